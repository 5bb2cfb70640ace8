package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utubapp/utub-server/internal/domain"
)

// attachTag puts a tag on a URL and returns the utubTagID.
func (e *testEnv) attachTag(sess *domain.Session, utubID, utubURLID int64, tag string) int64 {
	e.t.Helper()

	rec := e.do(http.MethodPost, fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, utubURLID), sess,
		map[string]any{"tagString": tag})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	body := e.body(rec)
	tagObj := body["UTubTag"].(map[string]any)
	return int64(tagObj["utubTagID"].(float64))
}

func TestCreateTag(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")

	rec := env.do(http.MethodPost, fmt.Sprintf("/utubs/%d/tags", utubID), sess,
		map[string]any{"tagString": "news"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := env.body(rec)
	assert.Equal(t, "Tag added to UTub.", body["message"])
	assert.Equal(t, float64(0), body["countInUTub"])

	tagObj := body["UTubTag"].(map[string]any)
	assert.Equal(t, "news", tagObj["tagString"])

	// Same string again is a conflict.
	rec = env.do(http.MethodPost, fmt.Sprintf("/utubs/%d/tags", utubID), sess,
		map[string]any{"tagString": "news"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	body = env.body(rec)
	assert.Equal(t, "Tag already in UTub.", body["message"])
	assert.Equal(t, float64(2), body["errorCode"])
}

func TestAttachTag(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")

	rec := env.do(http.MethodPost, fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, utubURLID), sess,
		map[string]any{"tagString": "news"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := env.body(rec)
	assert.Equal(t, "Tag added to URL.", body["message"])
	assert.Equal(t, float64(utubURLID), body["utubUrlID"])
	assert.Equal(t, float64(1), body["countInUTub"])
	assert.Len(t, body["utubUrlTagIDs"], 1)
}

func TestAttachTag_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")
	env.attachTag(sess, utubID, utubURLID, "news")

	rec := env.do(http.MethodPost, fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, utubURLID), sess,
		map[string]any{"tagString": "news"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := env.body(rec)
	assert.Equal(t, "URL already has this tag.", body["message"])
	assert.Equal(t, float64(2), body["errorCode"])
}

func TestAttachTag_SixthRejected(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")

	for _, tag := range []string{"one", "two", "three", "four", "five"} {
		env.attachTag(sess, utubID, utubURLID, tag)
	}

	rec := env.do(http.MethodPost, fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, utubURLID), sess,
		map[string]any{"tagString": "six"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := env.body(rec)
	assert.Equal(t, "URLs can only have up to 5 tags.", body["message"])
	assert.Equal(t, float64(3), body["errorCode"])
}

func TestAttachTag_FormFailure(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")

	rec := env.do(http.MethodPost, fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, utubURLID), sess,
		map[string]any{"tagString": "<b>news</b>"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := env.body(rec)
	assert.Equal(t, "Unable to add this tag, please check inputs.", body["message"])
	assert.Equal(t, float64(1), body["errorCode"])
	fields := body["errors"].(map[string]any)
	assert.Contains(t, fields, "tagString")
}

func TestDetachTag(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	first := env.addURL(sess, utubID, "example.com", "Example")
	second := env.addURL(sess, utubID, "example.org", "Example Org")

	env.attachTag(sess, utubID, first, "news")
	env.attachTag(sess, utubID, second, "news")

	// The first attach created link id 1.
	rec := env.do(http.MethodDelete, fmt.Sprintf("/utubs/%d/urls/%d/tags/1", utubID, first), sess, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := env.body(rec)
	assert.Equal(t, "Tag removed from URL.", body["message"])
	assert.Empty(t, body["utubUrlTagIDs"])
	assert.Equal(t, true, body["tagStillInUTub"])

	rec = env.do(http.MethodDelete, fmt.Sprintf("/utubs/%d/urls/%d/tags/1", utubID, first), sess, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Tag not found on URL.", env.body(rec)["message"])
}

func TestReplaceTag(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")
	tagID := env.attachTag(sess, utubID, utubURLID, "news")

	rec := env.do(http.MethodPut, fmt.Sprintf("/utubs/%d/urls/%d/tags/%d", utubID, utubURLID, tagID), sess,
		map[string]any{"tagString": "tech"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := env.body(rec)
	assert.Equal(t, "Success", body["status"])
	assert.Equal(t, "Tag on URL modified.", body["message"])
	assert.Equal(t, false, body["previousTagStillInUTub"])

	tagObj := body["UTubTag"].(map[string]any)
	assert.Equal(t, "tech", tagObj["tagString"])
}

func TestReplaceTag_SameString(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")
	tagID := env.attachTag(sess, utubID, utubURLID, "news")

	rec := env.do(http.MethodPut, fmt.Sprintf("/utubs/%d/urls/%d/tags/%d", utubID, utubURLID, tagID), sess,
		map[string]any{"tagString": "news"})
	assert.Equal(t, http.StatusOK, rec.Code)

	body := env.body(rec)
	assert.Equal(t, "No change", body["status"])
	assert.Equal(t, "Tag not modified.", body["message"])
}

func TestReplaceTag_TargetAlreadyOnURL(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	utubURLID := env.addURL(sess, utubID, "example.com", "Example")
	newsID := env.attachTag(sess, utubID, utubURLID, "news")
	env.attachTag(sess, utubID, utubURLID, "tech")

	rec := env.do(http.MethodPut, fmt.Sprintf("/utubs/%d/urls/%d/tags/%d", utubID, utubURLID, newsID), sess,
		map[string]any{"tagString": "tech"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := env.body(rec)
	assert.Equal(t, "URL already has this tag.", body["message"])
	assert.Equal(t, float64(2), body["errorCode"])
}

func TestDeleteTag(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login("u1@example.com")
	utubID := env.createUTub(sess, "links")
	first := env.addURL(sess, utubID, "example.com", "Example")
	second := env.addURL(sess, utubID, "example.org", "Example Org")

	tagID := env.attachTag(sess, utubID, first, "news")
	env.attachTag(sess, utubID, second, "news")

	rec := env.do(http.MethodDelete, fmt.Sprintf("/utubs/%d/tags/%d", utubID, tagID), sess, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := env.body(rec)
	assert.Equal(t, "Tag removed from UTub.", body["message"])
	assert.Len(t, body["urlIDs"], 2)

	// Both URLs lost the tag.
	rec = env.do(http.MethodGet, fmt.Sprintf("/utubs/%d/urls/%d", utubID, first), sess, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := env.body(rec)["URL"].(map[string]any)
	assert.Empty(t, view["utubUrlTagIDs"])
}
