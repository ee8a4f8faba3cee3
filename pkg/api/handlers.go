package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/group"
	"github.com/tamriel-io/goesp/pkg/index"
	"github.com/tamriel-io/goesp/pkg/kinds"
	"github.com/tamriel-io/goesp/pkg/plugin"
	"github.com/tamriel-io/goesp/pkg/record"
)

// Server holds the API server state
type Server struct {
	library *Library
	index   *index.Index
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server. The index is optional; without it
// the lookup endpoint reports service unavailable.
func NewServer(library *Library, ix *index.Index, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		library: library,
		index:   ix,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	names := s.library.Names()
	summaries := make([]PluginSummary, 0, len(names))
	for _, name := range names {
		p, ok := s.library.Get(name)
		if !ok {
			continue
		}
		summaries = append(summaries, pluginSummary(name, p))
	}
	sendSuccess(w, summaries)
}

func (s *Server) handleGetPlugin(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.library.Get(name)
	if !ok {
		sendError(w, fmt.Sprintf("plugin %q not loaded", name), http.StatusNotFound)
		return
	}

	groups := make([]GroupSummary, 0, len(p.Groups))
	for _, g := range p.Groups {
		groups = append(groups, GroupSummary{
			Type:    g.Type.String(),
			Label:   g.LabelString(),
			Records: countRecords(g),
		})
	}

	sendSuccess(w, struct {
		PluginSummary
		TopGroups []GroupSummary `json:"top_groups"`
	}{
		PluginSummary: pluginSummary(name, p),
		TopGroups:     groups,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.library.Get(name)
	if !ok {
		sendError(w, fmt.Sprintf("plugin %q not loaded", name), http.StatusNotFound)
		return
	}

	tagFilter := r.URL.Query().Get("tag")
	if tagFilter != "" && len(tagFilter) != 4 {
		sendError(w, "tag filter must be exactly 4 characters", http.StatusBadRequest)
		return
	}

	var summaries []RecordSummary
	p.Walk(func(rec *record.Record) {
		if rec.Tag == record.HeaderTag {
			return
		}
		if tagFilter != "" && rec.Tag != codec.MakeTag(tagFilter) {
			return
		}
		summaries = append(summaries, recordSummary(rec))
	})
	sendSuccess(w, summaries)
}

// RecordDetail extends the record summary with its field layout.
type RecordDetail struct {
	RecordSummary
	Compressed bool           `json:"compressed,omitempty"`
	FieldList  []FieldSummary `json:"field_list"`
}

// FieldSummary describes one field chunk.
type FieldSummary struct {
	Tag    string `json:"tag"`
	Length int    `json:"length"`
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.library.Get(name)
	if !ok {
		sendError(w, fmt.Sprintf("plugin %q not loaded", name), http.StatusNotFound)
		return
	}

	formID, err := parseFormID(chi.URLParam(r, "formid"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := p.FindRecord(formID)
	if rec == nil {
		sendError(w, fmt.Sprintf("form id %08X not defined in %s", formID, name), http.StatusNotFound)
		return
	}

	detail := RecordDetail{
		RecordSummary: recordSummary(rec),
		Compressed:    rec.Flags.Compressed(),
		FieldList:     make([]FieldSummary, 0, len(rec.Fields)),
	}
	for _, f := range rec.Fields {
		detail.FieldList = append(detail.FieldList, FieldSummary{
			Tag:    f.Tag.String(),
			Length: len(f.Data),
		})
	}
	sendSuccess(w, detail)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		sendError(w, "no index configured", http.StatusServiceUnavailable)
		return
	}

	formID, err := parseFormID(chi.URLParam(r, "formid"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.index.Lookup(formID)
	if errors.Is(err, index.ErrNotFound) {
		sendError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, entry)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records := 0
	for _, name := range s.library.Names() {
		if p, ok := s.library.Get(name); ok {
			p.Walk(func(*record.Record) { records++ })
		}
	}
	if s.metrics != nil {
		s.metrics.UpdateLibraryStats(s.library.Len(), records)
	}
	sendSuccess(w, map[string]int{
		"plugins": s.library.Len(),
		"records": records,
	})
}

func parseFormID(param string) (uint32, error) {
	v, err := strconv.ParseUint(param, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid form id %q: must be hexadecimal", param)
	}
	return uint32(v), nil
}

func pluginSummary(name string, p *plugin.Plugin) PluginSummary {
	s := PluginSummary{
		Name:      name,
		Groups:    len(p.Groups),
		Localized: p.Header.Flags.Has(record.FlagLocalized),
	}
	p.Walk(func(*record.Record) { s.Records++ })
	s.Records-- // header record is not content

	if hdr := p.FileHeader(); hdr != nil {
		s.Author = hdr.Author()
		s.Version = hdr.Header().Version
		for _, m := range hdr.Masters() {
			s.Masters = append(s.Masters, m.Name)
		}
	}
	return s
}

func recordSummary(r *record.Record) RecordSummary {
	s := RecordSummary{
		Tag:     r.Tag.String(),
		FormID:  fmt.Sprintf("%08X", r.FormID),
		Fields:  len(r.Fields),
		Flags:   uint32(r.Flags),
		Deleted: r.Flags.Deleted(),
	}
	if f, ok := r.FieldByTag(kinds.TagEDID); ok && len(f.Data) > 0 {
		d := f.Data
		if d[len(d)-1] == 0 {
			d = d[:len(d)-1]
		}
		s.EditorID = string(d)
	}
	return s
}

func countRecords(g *group.Group) int {
	n := 0
	g.Walk(func(*record.Record) { n++ })
	return n
}
