package offer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepass/cp-stock/pkg/errors"
)

func TestOfferRepository_FindByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offers/OF1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "OF1",
			"name": "Concert du nouvel an",
			"isEvent": true,
			"status": "ACTIVE",
			"venue": {"departmentCode": "973"},
			"lastProvider": {"id": "PR1", "name": "Allociné"}
		}`))
	}))
	defer srv.Close()

	repo := NewOfferRepository(srv.URL, "secret", logrus.New(), srv.Client())

	o, err := repo.FindByID(context.Background(), "OF1")

	require.NoError(t, err)
	assert.Equal(t, "OF1", o.ID)
	assert.True(t, o.IsEvent)
	assert.Equal(t, "973", o.Venue.DepartmentCode)
	assert.True(t, o.IsSynchronized())
	assert.True(t, o.IsPartiallySynchronized())
	assert.False(t, o.IsLockedByStatus())
}

func TestOfferRepository_FindByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	repo := NewOfferRepository(srv.URL, "secret", logrus.New(), srv.Client())

	_, err := repo.FindByID(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.Destruct(err).HTTPStatusCode)
}
