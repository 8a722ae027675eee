package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/frankmd/internal/models"
	"github.com/starford/frankmd/internal/noteservice"
	"github.com/starford/frankmd/internal/search"
	"github.com/starford/frankmd/internal/testutil"
)

// testEnv sets up a temp notes root, service and router.
func testEnv(t *testing.T) (http.Handler, string) {
	t.Helper()
	root, store := testutil.NewStore(t)
	svc := noteservice.NewService(store, search.DefaultOptions())
	return NewRouter(svc, nil), root
}

func do(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTree(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "note1.md", "x")
	testutil.WriteNote(t, root, "folder1/note2.md", "y")

	w := do(t, h, http.MethodGet, "/notes/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"name":"folder1","path":"folder1","type":"folder","children":[
			{"name":"note2","path":"folder1/note2.md","type":"file"}
		]},
		{"name":"note1","path":"note1.md","type":"file"}
	]`, w.Body.String())
}

func TestTree_Empty(t *testing.T) {
	h, _ := testEnv(t)
	w := do(t, h, http.MethodGet, "/notes/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetNote(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "test.md", "# Hello\n\nWorld")

	w := do(t, h, http.MethodGet, "/notes/test.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	note := decode[NoteDetail](t, w)
	assert.Equal(t, "test.md", note.Path)
	assert.Equal(t, "# Hello\n\nWorld", note.Content)
	assert.Equal(t, "Hello", note.Title)
	assert.Equal(t, `"`+note.Checksum+`"`, w.Header().Get("ETag"))

	w = do(t, h, http.MethodGet, "/notes/test.md", nil, "If-None-Match", `"`+note.Checksum+`"`)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGetNote_EncodedSlash(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "topics/note.md", "x")

	w := do(t, h, http.MethodGet, "/notes/topics%2Fnote.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "topics/note.md", decode[NoteDetail](t, w).Path)
}

func TestNotePath_PercentDecodedOnce(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "100%41.md", "percent note")
	testutil.WriteNote(t, root, "100A.md", "other note")

	w := do(t, h, http.MethodGet, "/notes/100%2541.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	note := decode[NoteDetail](t, w)
	assert.Equal(t, "100%41.md", note.Path)
	assert.Equal(t, "percent note", note.Content)

	w = do(t, h, http.MethodPatch, "/notes/100%2541.md", ContentRequest{Content: "edited"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", testutil.ReadNote(t, root, "100%41.md"))

	w = do(t, h, http.MethodDelete, "/notes/100%2541.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, testutil.Exists(t, root, "100%41.md"))
	assert.Equal(t, "other note", testutil.ReadNote(t, root, "100A.md"))

	testutil.WriteNote(t, root, "dir/50%25.md", "nested")
	w = do(t, h, http.MethodGet, "/notes/dir%2F50%2525.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dir/50%25.md", decode[NoteDetail](t, w).Path)
}

func TestGetNote_Errors(t *testing.T) {
	h, root := testEnv(t)
	testutil.MakeFolder(t, root, "dir")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/notes/nonexistent.md", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/notes/dir", nil).Code)

	w := do(t, h, http.MethodGet, "/notes/..%2F..%2Fetc%2Fpasswd", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"invalid path"}`, w.Body.String())
}

func TestCreateNote(t *testing.T) {
	h, root := testEnv(t)

	w := do(t, h, http.MethodPost, "/notes/new_note", ContentRequest{Content: "# New Note"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "new_note.md", decode[NoteDetail](t, w).Path)
	assert.Equal(t, "# New Note", testutil.ReadNote(t, root, "new_note.md"))

	w = do(t, h, http.MethodPost, "/notes/subfolder/nested.md", ContentRequest{Content: "Nested"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, testutil.Exists(t, root, "subfolder/nested.md"))
}

func TestCreateNote_EmptyBody(t *testing.T) {
	h, root := testEnv(t)

	w := do(t, h, http.MethodPost, "/notes/blank.md", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "", testutil.ReadNote(t, root, "blank.md"))
}

func TestCreateNote_Existing(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "existing.md", "keep")

	w := do(t, h, http.MethodPost, "/notes/existing.md", ContentRequest{Content: "Content"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"already exists"}`, w.Body.String())
	assert.Equal(t, "keep", testutil.ReadNote(t, root, "existing.md"))
}

func TestCreateNote_BadBody(t *testing.T) {
	h, _ := testEnv(t)

	w := do(t, h, http.MethodPost, "/notes/x.md", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := `{"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w = do(t, h, http.MethodPost, "/notes/x.md", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSaveNote(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "test.md", "Old content")

	w := do(t, h, http.MethodPatch, "/notes/test.md", ContentRequest{Content: "New content"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New content", testutil.ReadNote(t, root, "test.md"))

	w = do(t, h, http.MethodPut, "/notes/new.md", ContentRequest{Content: "Content"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, testutil.Exists(t, root, "new.md"))
}

func TestSaveNote_IfMatch(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "lock.md", "v1")

	etag := do(t, h, http.MethodGet, "/notes/lock.md", nil).Header().Get("ETag")
	require.NotEmpty(t, etag)

	w := do(t, h, http.MethodPut, "/notes/lock.md", ContentRequest{Content: "v2"}, "If-Match", etag)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPut, "/notes/lock.md", ContentRequest{Content: "v3"}, "If-Match", etag)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "v2", testutil.ReadNote(t, root, "lock.md"))
}

func TestDeleteNote(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "to_delete.md", "x")

	w := do(t, h, http.MethodDelete, "/notes/to_delete.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, testutil.Exists(t, root, "to_delete.md"))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/notes/to_delete.md", nil).Code)
}

func TestRenameNote(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "root.md", "Content")
	testutil.MakeFolder(t, root, "subfolder")

	w := do(t, h, http.MethodPost, "/notes/root.md/rename", RenameRequest{NewPath: "subfolder/moved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[RenameResponse](t, w)
	assert.Equal(t, "root.md", resp.OldPath)
	assert.Equal(t, "subfolder/moved.md", resp.NewPath)
	assert.False(t, testutil.Exists(t, root, "root.md"))
	assert.Equal(t, "Content", testutil.ReadNote(t, root, "subfolder/moved.md"))
}

func TestRenameNote_Errors(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "a.md", "a")
	testutil.WriteNote(t, root, "b.md", "b")

	assert.Equal(t, http.StatusNotFound,
		do(t, h, http.MethodPost, "/notes/nonexistent.md/rename", RenameRequest{NewPath: "new.md"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		do(t, h, http.MethodPost, "/notes/a.md/rename", RenameRequest{NewPath: "b.md"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, "/notes/a.md/rename", RenameRequest{}).Code)
}

func TestSearch(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "test.md", "line1\nline2\nmatch\nline4\nline5")
	testutil.WriteNote(t, root, "regex.md", "foo123bar")

	w := do(t, h, http.MethodGet, "/notes/search?q=match", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hits := decode[[]models.SearchHit](t, w)
	require.Len(t, hits, 1)
	assert.Equal(t, "test.md", hits[0].Path)
	assert.Equal(t, 3, hits[0].LineNumber)
	assert.Len(t, hits[0].Context, 5)

	w = do(t, h, http.MethodGet, "/notes/search?q=match&context=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.SearchHit](t, w)[0].Context, 1)

	w = do(t, h, http.MethodGet, `/notes/search?q=foo%5Cd%2Bbar`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.SearchHit](t, w), 1)
}

func TestSearch_EmptyAndLimits(t *testing.T) {
	h, root := testEnv(t)
	testutil.WriteNote(t, root, "test.md", "Hello world\nhello again\n")

	w := do(t, h, http.MethodGet, "/notes/search?q=nonexistent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, h, http.MethodGet, "/notes/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, h, http.MethodGet, "/notes/search?q=hello&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.SearchHit](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/notes/search?q=a&limit=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/notes/search?q=a&context=-1", nil).Code)
}

func TestFolders(t *testing.T) {
	h, root := testEnv(t)

	w := do(t, h, http.MethodPost, "/folders/projects/2024", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "projects/2024", decode[FolderResponse](t, w).Path)
	assert.True(t, testutil.Exists(t, root, "projects/2024"))

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPost, "/folders/projects", nil).Code)

	w = do(t, h, http.MethodPost, "/folders/projects/rename", RenameRequest{NewPath: "archive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, testutil.Exists(t, root, "archive/2024"))

	w = do(t, h, http.MethodDelete, "/folders/archive", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"folder is not empty"}`, w.Body.String())

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/folders/archive/2024", nil).Code)
	assert.False(t, testutil.Exists(t, root, "archive/2024"))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/folders/archive/2024", nil).Code)
}

func TestFolders_RenameMissing(t *testing.T) {
	h, _ := testEnv(t)
	w := do(t, h, http.MethodPost, "/folders/ghost/rename", RenameRequest{NewPath: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplitRename(t *testing.T) {
	p, ok := splitRename("a/b.md/rename")
	assert.True(t, ok)
	assert.Equal(t, "a/b.md", p)

	p, ok = splitRename("rename")
	assert.False(t, ok)
	assert.Equal(t, "rename", p)

	_, ok = splitRename("/rename")
	assert.False(t, ok)
}
