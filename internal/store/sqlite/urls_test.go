package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utubapp/utub-server/internal/domain"
	"github.com/utubapp/utub-server/internal/store"
)

// addURL is a shorthand for the common add-URL call in fixtures.
func addURL(t *testing.T, st *Store, utubID, callerID int64, canonical, title string) *domain.UTubURL {
	t.Helper()

	res, err := st.AddURL(context.Background(), utubID, callerID, canonical, true, title)
	require.NoError(t, err)
	return res.UTubURL
}

func TestAddURL_CreatesAndReusesCanonicalRow(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	a := seedUTub(t, st, u1, "a")
	b := seedUTub(t, st, u1, "b")

	res, err := st.AddURL(context.Background(), a.ID, u1.ID, "https://example.com/", true, "Example")
	require.NoError(t, err)
	assert.True(t, res.CreatedURL)
	assert.Equal(t, "https://example.com/", res.UTubURL.URLString)
	assert.Equal(t, "Example", res.UTubURL.Title)
	assert.Equal(t, u1.ID, res.UTubURL.AddedByUserID)

	// Same canonical string in another UTub reuses the global URL row.
	res2, err := st.AddURL(context.Background(), b.ID, u1.ID, "https://example.com/", true, "Example")
	require.NoError(t, err)
	assert.False(t, res2.CreatedURL)
	assert.Equal(t, res.UTubURL.URLID, res2.UTubURL.URLID)
}

func TestAddURL_DuplicateInUTub(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	utub := seedUTub(t, st, u1, "links")
	addURL(t, st, utub.ID, u1.ID, "https://example.com/", "Example")

	before, err := st.GetUTubByID(context.Background(), utub.ID)
	require.NoError(t, err)

	_, err = st.AddURL(context.Background(), utub.ID, u1.ID, "https://example.com/", true, "Again")
	assert.ErrorIs(t, err, store.ErrURLInUTub)

	// A rejected add leaves the watermark alone.
	after, err := st.GetUTubByID(context.Background(), utub.ID)
	require.NoError(t, err)
	assert.True(t, after.LastUpdated.Equal(before.LastUpdated))
}

func TestAddURL_RequiresMembership(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	outsider := seedUser(t, st, "u2@example.com")
	utub := seedUTub(t, st, u1, "links")

	_, err := st.AddURL(context.Background(), utub.ID, outsider.ID, "https://example.com/", true, "")
	assert.ErrorIs(t, err, store.ErrNotMember)

	_, err = st.AddURL(context.Background(), 999, u1.ID, "https://example.com/", true, "")
	assert.ErrorIs(t, err, store.ErrUTubNotFound)
}

func TestAddURL_BumpsWatermark(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	utub := seedUTub(t, st, u1, "links")

	before, err := st.GetUTubByID(context.Background(), utub.ID)
	require.NoError(t, err)

	addURL(t, st, utub.ID, u1.ID, "https://example.com/", "")

	after, err := st.GetUTubByID(context.Background(), utub.ID)
	require.NoError(t, err)
	assert.True(t, after.LastUpdated.After(before.LastUpdated))
}

func TestUpdateURLString(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	utub := seedUTub(t, st, u1, "links")
	uu := addURL(t, st, utub.ID, u1.ID, "https://example.com/", "Example")

	got, changed, err := st.UpdateURLString(context.Background(), utub.ID, uu.ID, u1.ID, "https://example.org/", true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "https://example.org/", got.URLString)

	// Same string again is a no-op and must not bump the watermark.
	before, err := st.GetUTubByID(context.Background(), utub.ID)
	require.NoError(t, err)

	_, changed, err = st.UpdateURLString(context.Background(), utub.ID, uu.ID, u1.ID, "https://example.org/", true)
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := st.GetUTubByID(context.Background(), utub.ID)
	require.NoError(t, err)
	assert.True(t, after.LastUpdated.Equal(before.LastUpdated))
}

func TestUpdateURLString_DuplicateTarget(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	utub := seedUTub(t, st, u1, "links")
	addURL(t, st, utub.ID, u1.ID, "https://example.com/", "")
	uu := addURL(t, st, utub.ID, u1.ID, "https://example.org/", "")

	_, _, err := st.UpdateURLString(context.Background(), utub.ID, uu.ID, u1.ID, "https://example.com/", true)
	assert.ErrorIs(t, err, store.ErrURLInUTub)
}

func TestUpdateURLString_AdderOrCreatorOnly(t *testing.T) {
	st := newTestStore(t)
	creator := seedUser(t, st, "u1@example.com")
	member := seedUser(t, st, "u2@example.com")
	other := seedUser(t, st, "u3@example.com")
	utub := seedUTub(t, st, creator, "links")
	require.NoError(t, st.AddMember(context.Background(), utub.ID, member.ID))
	require.NoError(t, st.AddMember(context.Background(), utub.ID, other.ID))

	uu := addURL(t, st, utub.ID, member.ID, "https://example.com/", "")

	// A member who neither added the URL nor created the UTub may not edit.
	_, _, err := st.UpdateURLString(context.Background(), utub.ID, uu.ID, other.ID, "https://example.net/", true)
	assert.ErrorIs(t, err, store.ErrNotPermitted)

	// The creator may edit someone else's URL.
	_, changed, err := st.UpdateURLString(context.Background(), utub.ID, uu.ID, creator.ID, "https://example.net/", true)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestUpdateURLTitle(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	utub := seedUTub(t, st, u1, "links")
	uu := addURL(t, st, utub.ID, u1.ID, "https://example.com/", "Old")

	got, changed, err := st.UpdateURLTitle(context.Background(), utub.ID, uu.ID, u1.ID, "New")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "New", got.Title)

	_, changed, err = st.UpdateURLTitle(context.Background(), utub.ID, uu.ID, u1.ID, "New")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRemoveURL(t *testing.T) {
	st := newTestStore(t)
	u1 := seedUser(t, st, "u1@example.com")
	utub := seedUTub(t, st, u1, "links")
	uu := addURL(t, st, utub.ID, u1.ID, "https://example.com/", "Example")

	_, err := st.AttachTag(context.Background(), utub.ID, uu.ID, u1.ID, "news")
	require.NoError(t, err)

	removed, err := st.RemoveURL(context.Background(), utub.ID, uu.ID, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", removed.URLString)

	_, err = st.GetUTubURL(context.Background(), utub.ID, uu.ID)
	assert.ErrorIs(t, err, store.ErrUTubURLNotFound)

	// The global canonical row survives removal from a UTub.
	_, err = st.GetURLByString(context.Background(), "https://example.com/")
	require.NoError(t, err)

	// And the URL can come straight back in.
	res, err := st.AddURL(context.Background(), utub.ID, u1.ID, "https://example.com/", true, "Example")
	require.NoError(t, err)
	assert.False(t, res.CreatedURL)
}

func TestRemoveURL_AdderOrCreatorOnly(t *testing.T) {
	st := newTestStore(t)
	creator := seedUser(t, st, "u1@example.com")
	other := seedUser(t, st, "u2@example.com")
	utub := seedUTub(t, st, creator, "links")
	require.NoError(t, st.AddMember(context.Background(), utub.ID, other.ID))

	uu := addURL(t, st, utub.ID, creator.ID, "https://example.com/", "")

	_, err := st.RemoveURL(context.Background(), utub.ID, uu.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotPermitted)
}

func TestGetURLByString_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetURLByString(context.Background(), "https://missing.example/")
	assert.ErrorIs(t, err, store.ErrURLNotFound)
}
