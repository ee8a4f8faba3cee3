package api

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/group"
	"github.com/tamriel-io/goesp/pkg/index"
	"github.com/tamriel-io/goesp/pkg/plugin"
	"github.com/tamriel-io/goesp/pkg/record"
)

func testPlugin(t *testing.T) *plugin.Plugin {
	t.Helper()

	hedr := make([]byte, 12)
	binary.LittleEndian.PutUint32(hedr[0:4], math.Float32bits(1.7))
	binary.LittleEndian.PutUint32(hedr[4:8], 2)
	header := &record.Record{
		Tag: record.HeaderTag,
		Fields: []codec.Field{
			{Tag: codec.MakeTag("HEDR"), Data: hedr},
			{Tag: codec.MakeTag("CNAM"), Data: []byte("tester\x00")},
			{Tag: codec.MakeTag("MAST"), Data: []byte("Skyrim.esm\x00")},
			{Tag: codec.MakeTag("DATA"), Data: make([]byte, 8)},
		},
	}

	aact := group.NewTop(codec.MakeTag("AACT"))
	aact.Entries = append(aact.Entries,
		group.Entry{Record: &record.Record{
			Tag:    codec.MakeTag("AACT"),
			FormID: 0x13,
			Fields: []codec.Field{{Tag: codec.MakeTag("EDID"), Data: []byte("ActionIdle\x00")}},
		}},
	)
	weap := group.NewTop(codec.MakeTag("WEAP"))
	weap.Entries = append(weap.Entries, group.Entry{Record: &record.Record{
		Tag:    codec.MakeTag("WEAP"),
		FormID: 0x1000,
		Fields: []codec.Field{
			{Tag: codec.MakeTag("EDID"), Data: []byte("IronSword\x00")},
			{Tag: codec.MakeTag("DATA"), Data: make([]byte, 10)},
		},
	}})

	// Round-trip through the codec so models attach the same way they
	// would for a plugin loaded from disk.
	raw, err := (&plugin.Plugin{Header: header, Groups: []*group.Group{aact, weap}}).Write()
	require.NoError(t, err)
	p, err := plugin.Parse(raw)
	require.NoError(t, err)
	return p
}

func testServer(t *testing.T, ix *index.Index) *Server {
	t.Helper()
	lib := NewLibrary()
	lib.Add("test.esp", testPlugin(t))
	return NewServer(lib, ix, ServerConfig{Port: 8080, Bind: "127.0.0.1"}, nil)
}

func doRequest(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	NewRouter(s).ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleHealth(t *testing.T) {
	rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestHandleListPlugins(t *testing.T) {
	rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins")

	require.Equal(t, http.StatusOK, rec.Code)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var summaries []PluginSummary
	require.NoError(t, json.Unmarshal(data, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "test.esp", summaries[0].Name)
	assert.Equal(t, "tester", summaries[0].Author)
	assert.Equal(t, 2, summaries[0].Records)
	assert.Equal(t, []string{"Skyrim.esm"}, summaries[0].Masters)
}

func TestHandleGetPlugin(t *testing.T) {
	t.Run("existing plugin", func(t *testing.T) {
		rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
	})

	t.Run("missing plugin", func(t *testing.T) {
		rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/missing.esp")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, resp.Success)
	})
}

func TestHandleListRecords(t *testing.T) {
	t.Run("all records", func(t *testing.T) {
		rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp/records")
		require.Equal(t, http.StatusOK, rec.Code)

		data, _ := json.Marshal(resp.Data)
		var summaries []RecordSummary
		require.NoError(t, json.Unmarshal(data, &summaries))
		assert.Len(t, summaries, 2)
	})

	t.Run("tag filter", func(t *testing.T) {
		rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp/records?tag=WEAP")
		require.Equal(t, http.StatusOK, rec.Code)

		data, _ := json.Marshal(resp.Data)
		var summaries []RecordSummary
		require.NoError(t, json.Unmarshal(data, &summaries))
		require.Len(t, summaries, 1)
		assert.Equal(t, "WEAP", summaries[0].Tag)
		assert.Equal(t, "IronSword", summaries[0].EditorID)
	})

	t.Run("bad tag filter", func(t *testing.T) {
		rec, _ := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp/records?tag=TOOLONG")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetRecord(t *testing.T) {
	t.Run("existing record", func(t *testing.T) {
		rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp/records/1000")
		require.Equal(t, http.StatusOK, rec.Code)

		data, _ := json.Marshal(resp.Data)
		var detail RecordDetail
		require.NoError(t, json.Unmarshal(data, &detail))
		assert.Equal(t, "WEAP", detail.Tag)
		assert.Equal(t, "00001000", detail.FormID)
		require.Len(t, detail.FieldList, 2)
		assert.Equal(t, "EDID", detail.FieldList[0].Tag)
		assert.Equal(t, 10, detail.FieldList[1].Length)
	})

	t.Run("missing record", func(t *testing.T) {
		rec, _ := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp/records/DEAD")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed form id", func(t *testing.T) {
		rec, _ := doRequest(t, testServer(t, nil), "GET", "/api/v1/plugins/test.esp/records/nothex")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLookup(t *testing.T) {
	t.Run("no index configured", func(t *testing.T) {
		rec, _ := doRequest(t, testServer(t, nil), "GET", "/api/v1/lookup/13")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("with index", func(t *testing.T) {
		ix, err := index.Open(t.TempDir())
		require.NoError(t, err)
		defer ix.Close()

		s := testServer(t, ix)
		p, _ := s.library.Get("test.esp")
		_, err = ix.IndexPlugin("test.esp", p)
		require.NoError(t, err)

		rec, resp := doRequest(t, s, "GET", "/api/v1/lookup/13")
		require.Equal(t, http.StatusOK, rec.Code)

		data, _ := json.Marshal(resp.Data)
		var entry index.Entry
		require.NoError(t, json.Unmarshal(data, &entry))
		assert.Equal(t, "AACT", entry.Tag)
		assert.Equal(t, "test.esp", entry.Plugin)

		rec, _ = doRequest(t, s, "GET", "/api/v1/lookup/FFFF")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleStats(t *testing.T) {
	rec, resp := doRequest(t, testServer(t, nil), "GET", "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(resp.Data)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 1, stats["plugins"])
	assert.Equal(t, 3, stats["records"]) // header included in walk
}
