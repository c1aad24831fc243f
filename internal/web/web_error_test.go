package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	ts := newWebTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/player/character"},
		{http.MethodPost, "/player/adjust"},
		{http.MethodPost, "/dm/adjust"},
		{http.MethodGet, "/room/events"},
		{http.MethodGet, "/room/qr.png"},
	} {
		rr := ts.request(tc.method, tc.path, url.Values{}, false)
		assert.Equal(t, http.StatusSeeOther, rr.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "/", rr.Header().Get("Location"), "%s %s", tc.method, tc.path)
	}

	rr := ts.get("/")
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-error", "Please enter a room first")
}

func TestPartialIdentityTreatedAsLoggedOut(t *testing.T) {
	ts := newWebTestServer(t)
	ts.cookies.cookies["room-code"] = &http.Cookie{Name: "room-code", Value: "ROOM42"}

	doc := ts.home()
	assertContainsElement(t, doc, "form#login-form")
}

func TestInvalidDeltaHandledGracefully(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginPlayer("ROOM42", "alice")

	rr := ts.post("/player/adjust", url.Values{"delta": {"invalid"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	assertContainsText(t, parseHTML(rr.Body), ".flash-error", "Invalid adjustment")
}

func TestUnknownRouteNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/rooms/ABC123")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
