package httpx

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/app"
	"blog/internal/auth"
	"blog/internal/db"
	"blog/internal/models"
	"blog/internal/store"
)

type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, _ := newTestServerDB(t)
	return srv
}

func newTestServerDB(t *testing.T) (*Server, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	conn, d, err := db.Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, d))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := store.New(conn, d, store.WithLogger(log), store.WithClock(clock.now))
	srv, err := NewServer(s, auth.NewManager(s, time.Hour, log), app.Config{RequestTimeout: 5 * time.Second}, log)
	require.NoError(t, err)
	return srv, conn
}

// signUp registers a user and returns a live session cookie for them.
func signUp(t *testing.T, srv *Server, username, first, last string) (*models.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Username: username, Email: username + "@example.com", FirstName: first, LastName: last}
	require.NoError(t, srv.Auth.Register(ctx, u, "looking-glass"))
	sess, _, err := srv.Auth.Login(ctx, username, "looking-glass")
	require.NoError(t, err)
	return u, &http.Cookie{Name: auth.CookieName, Value: sess.ID}
}

func newPost(t *testing.T, srv *Server, u *models.User, title string) *models.Post {
	t.Helper()
	ctx := context.Background()
	profile, err := srv.Store.Profiles().ForUser(ctx, u.ID)
	require.NoError(t, err)
	p := &models.Post{ProfileID: profile.ID, Title: title, Content: "<p>" + title + "</p>"}
	require.NoError(t, srv.Store.Posts().Create(ctx, p))
	return p
}

func do(srv *Server, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestHomeListing(t *testing.T) {
	srv := newTestServer(t)
	alice, _ := signUp(t, srv, "alice", "Alice", "Smith")
	for i := 1; i <= 12; i++ {
		newPost(t, srv, alice, fmt.Sprintf("Post %02d", i))
	}

	rr := do(srv, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Equal(t, 10, strings.Count(body, `<article class="post">`))
	assert.NotContains(t, body, "Post 02")
	for i := 12; i > 3; i-- {
		newer, older := fmt.Sprintf("Post %02d", i), fmt.Sprintf("Post %02d", i-1)
		assert.Less(t, strings.Index(body, newer), strings.Index(body, older), "%s before %s", newer, older)
	}

	rr = do(srv, http.MethodGet, "/?page=2", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, strings.Count(rr.Body.String(), `<article class="post">`))
	assert.Contains(t, rr.Body.String(), "Post 01")

	rr = do(srv, http.MethodGet, "/?page=last", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Post 01")

	for _, q := range []string{"3", "0", "abc"} {
		assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/?page="+q, nil, nil).Code, "page=%s", q)
	}
}

func TestEmptyHomeIsFine(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No posts yet.")
}

func TestGatedRoutesRedirectToLogin(t *testing.T) {
	srv := newTestServer(t)
	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/posts/"},
		{http.MethodGet, "/posts/create/"},
		{http.MethodGet, "/posts/1/update/"},
		{http.MethodPost, "/posts/1/delete/"},
		{http.MethodPost, "/post/1/like/"},
		{http.MethodPost, "/comment/1/like/"},
	} {
		rr := do(srv, c.method, c.path, url.Values{}, nil)
		assert.Equal(t, http.StatusSeeOther, rr.Code, c.path)
		assert.Equal(t, "/login/?next="+url.QueryEscape(c.path), rr.Header().Get("Location"), c.path)
	}
}

func TestMethodAndRouteErrors(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := signUp(t, srv, "alice", "Alice", "Smith")

	rr := do(srv, http.MethodGet, "/post/1/like/", nil, cookie)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Contains(t, rr.Header().Get("Allow"), http.MethodPost)

	rr = do(srv, http.MethodDelete, "/posts/detail/1/", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/posts/detail/99/", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/posts/nope/", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/profile/nobody/", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodPost, "/post/99/like/", url.Values{}, cookie).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodPost, "/comment/99/like/", url.Values{}, cookie).Code)
}

func TestRegisterThenLogin(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{
		"first_name": {"Carol"},
		"last_name":  {"Jones"},
		"username":   {"carol"},
		"email":      {"carol@example.com"},
		"password1":  {"looking-glass"},
		"password2":  {"looking-glass"},
	}
	rr := do(srv, http.MethodPost, "/register/", form, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
	assert.Equal(t, "/login/", rr.Header().Get("Location"))

	u, err := srv.Store.Users().ByUsername(context.Background(), "carol")
	require.NoError(t, err)
	n, err := srv.Store.Profiles().CountForUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rr = do(srv, http.MethodPost, "/register/", form, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A user with that username already exists.")

	rr = do(srv, http.MethodPost, "/login/", url.Values{"username": {"carol"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please enter a correct username and password.")

	rr = do(srv, http.MethodPost, "/login/", url.Values{"username": {"carol"}, "password": {"looking-glass"}, "next": {"/posts/"}}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/posts/", rr.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	rr = do(srv, http.MethodGet, "/posts/", nil, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "You have not written anything yet.")

	rr = do(srv, http.MethodPost, "/logout/", url.Values{}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "You have been logged out.")

	rr = do(srv, http.MethodGet, "/posts/", nil, session)
	assert.Equal(t, http.StatusSeeOther, rr.Code, "session is gone after logout")
}

func TestCreatePost(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := signUp(t, srv, "alice", "Alice", "Smith")
	cat, err := srv.Store.Categories().Create(context.Background(), "Go Tips")
	require.NoError(t, err)

	rr := do(srv, http.MethodPost, "/posts/create/", url.Values{"title": {""}, "content": {"<script>x</script>"}}, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "This field is required.")

	rr = do(srv, http.MethodPost, "/posts/create/", url.Values{
		"title":    {"Hello"},
		"content":  {`<p onclick="x()">Hi <b>there</b></p>`},
		"category": {fmt.Sprint(cat.ID)},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	var id int64
	_, err = fmt.Sscanf(rr.Header().Get("Location"), "/posts/detail/%d/", &id)
	require.NoError(t, err)
	p, err := srv.Store.Posts().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "<p>Hi <b>there</b></p>", p.Content)
	assert.Equal(t, "Go Tips", p.CategoryName.String)

	rr = do(srv, http.MethodGet, rr.Header().Get("Location"), nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<b>there</b>")
}

func TestOnlyOwnerMayUpdateOrDelete(t *testing.T) {
	srv := newTestServer(t)
	alice, aliceCookie := signUp(t, srv, "alice", "Alice", "Smith")
	_, bobCookie := signUp(t, srv, "bob", "Bob", "Brown")
	p := newPost(t, srv, alice, "Mine")

	update := fmt.Sprintf("/posts/%d/update/", p.ID)
	del := fmt.Sprintf("/posts/%d/delete/", p.ID)

	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodGet, update, nil, bobCookie).Code)
	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodPost, update, url.Values{"title": {"Stolen"}, "content": {"x"}}, bobCookie).Code)
	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodPost, del, url.Values{}, bobCookie).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/posts/999/update/", nil, bobCookie).Code)

	got, err := srv.Store.Posts().Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)

	rr := do(srv, http.MethodGet, update, nil, aliceCookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="Mine"`)

	rr = do(srv, http.MethodPost, update, url.Values{"title": {"Edited"}, "content": {"<p>new</p>"}}, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	got, err = srv.Store.Posts().Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)
	assert.True(t, got.Edited())

	rr = do(srv, http.MethodGet, del, nil, aliceCookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Are you sure")

	rr = do(srv, http.MethodPost, del, url.Values{}, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/posts/", rr.Header().Get("Location"))
	_, err = srv.Store.Posts().Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthenticatedCommentUsesAccountName(t *testing.T) {
	srv := newTestServer(t)
	alice, cookie := signUp(t, srv, "alice", "Alice", "Smith")
	p := newPost(t, srv, alice, "Hello")
	detail := fmt.Sprintf("/posts/detail/%d/", p.ID)

	rr := do(srv, http.MethodPost, detail, url.Values{"name": {"Impostor"}, "comment_text": {"Nice"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, detail, rr.Header().Get("Location"))

	comments, err := srv.Store.Comments().ForPost(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Alice Smith", comments[0].Name)
	assert.False(t, comments[0].Anonymous())
}

func TestAnonymousComment(t *testing.T) {
	srv := newTestServer(t)
	alice, _ := signUp(t, srv, "alice", "Alice", "Smith")
	p := newPost(t, srv, alice, "Hello")
	detail := fmt.Sprintf("/posts/detail/%d/", p.ID)

	rr := do(srv, http.MethodPost, detail, url.Values{"comment_text": {"Who am I"}}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "This field is required.")
	assert.Contains(t, rr.Body.String(), "Who am I", "bound form is re-rendered")

	n, err := srv.Store.Comments().CountForPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	rr = do(srv, http.MethodPost, detail, url.Values{"name": {"Visitor"}, "comment_text": {"Hi"}}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	comments, err := srv.Store.Comments().ForPost(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Visitor", comments[0].Name)
	assert.True(t, comments[0].Anonymous())
}

func TestToggleLikes(t *testing.T) {
	srv := newTestServer(t)
	alice, cookie := signUp(t, srv, "alice", "Alice", "Smith")
	p := newPost(t, srv, alice, "Hello")
	ctx := context.Background()
	profile, err := srv.Store.Profiles().ForUser(ctx, alice.ID)
	require.NoError(t, err)

	like := fmt.Sprintf("/post/%d/like/", p.ID)
	rr := do(srv, http.MethodPost, like, url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, fmt.Sprintf("/posts/detail/%d/", p.ID), rr.Header().Get("Location"))

	l, err := srv.Store.Likes().ForPost(ctx, profile.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, l.IsLiked)

	rr = do(srv, http.MethodGet, fmt.Sprintf("/posts/detail/%d/", p.ID), nil, cookie)
	assert.Contains(t, rr.Body.String(), "1 like<")

	require.Equal(t, http.StatusSeeOther, do(srv, http.MethodPost, like, url.Values{}, cookie).Code)
	l2, err := srv.Store.Likes().ForPost(ctx, profile.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, l2.IsLiked)
	assert.Equal(t, l.ID, l2.ID, "toggling reuses the row")

	c := &models.Comment{PostID: p.ID, Name: "Visitor", CommentText: "Hi"}
	require.NoError(t, srv.Store.Comments().Create(ctx, c))
	rr = do(srv, http.MethodPost, fmt.Sprintf("/comment/%d/like/", c.ID), url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, fmt.Sprintf("/posts/detail/%d/", p.ID), rr.Header().Get("Location"))
	cl, err := srv.Store.Likes().ForComment(ctx, profile.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, cl.IsLiked)
}

func TestProfilePage(t *testing.T) {
	srv := newTestServer(t)
	alice, _ := signUp(t, srv, "alice", "Alice", "Smith")
	bob, _ := signUp(t, srv, "bob", "Bob", "Brown")
	newPost(t, srv, alice, "Alice writes")
	newPost(t, srv, bob, "Bob writes")

	rr := do(srv, http.MethodGet, "/profile/alice/", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Alice writes")
	assert.NotContains(t, rr.Body.String(), "Bob writes")
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/posts/":              "/posts/",
		"/posts/?page=2":       "/posts/?page=2",
		"//evil.example":       "/",
		"https://evil.example": "/",
		`/\evil.example`:       "/",
		"posts/":               "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestRecoverAnswers500(t *testing.T) {
	srv := newTestServer(t)
	h := srv.WithRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodGet, "/static/style.css", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestToggleStoreFailureIs500(t *testing.T) {
	srv, conn := newTestServerDB(t)
	alice, cookie := signUp(t, srv, "alice", "Alice", "Smith")
	p := newPost(t, srv, alice, "Hello")
	c := &models.Comment{PostID: p.ID, Name: "Visitor", CommentText: "Hi"}
	require.NoError(t, srv.Store.Comments().Create(context.Background(), c))

	for _, table := range []string{"likes", "comment_likes"} {
		_, err := conn.Exec(fmt.Sprintf(`CREATE TRIGGER %[1]s_race BEFORE INSERT ON %[1]s
			BEGIN SELECT RAISE(ABORT, 'UNIQUE constraint failed: %[1]s.profile_id'); END`, table))
		require.NoError(t, err)
	}

	rr := do(srv, http.MethodPost, fmt.Sprintf("/post/%d/like/", p.ID), url.Values{}, cookie)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	rr = do(srv, http.MethodPost, fmt.Sprintf("/comment/%d/like/", c.ID), url.Values{}, cookie)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	n, err := srv.Store.Likes().CountPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostsIndexRejectsOtherMethods(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := signUp(t, srv, "alice", "Alice", "Smith")

	rr := do(srv, http.MethodPost, "/posts/", url.Values{}, cookie)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}
