package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemotiveAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs":[
			{"id":101,"url":"https://remotive.com/j/101","title":"Courier","company_name":"Speedy","candidate_required_location":"Sweden","description":"Deliver things","publication_date":"2026-08-01T06:00:00"},
			{"id":102,"url":"https://remotive.com/j/102","title":"Tutor","company_name":"Learnly","candidate_required_location":"Anywhere","description":"Teach things","publication_date":"2026-08-01T07:00:00"}
		]}`))
	}))
	defer server.Close()

	adapter := NewRemotiveAdapter()
	adapter.baseURL = server.URL

	postings, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, postings, 2)

	assert.Equal(t, "remotive", postings[0].Source)
	assert.Equal(t, "101", postings[0].ExternalID)
	assert.Equal(t, "Courier", postings[0].Title)
	assert.Equal(t, "Speedy", postings[0].Company)
	assert.False(t, postings[0].FetchedAt.IsZero())
}

func TestRemotiveAdapter_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewRemotiveAdapter()
	adapter.baseURL = server.URL

	_, err := adapter.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestRemotiveAdapter_ClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewRemotiveAdapter()
	adapter.baseURL = server.URL

	_, err := adapter.Fetch(context.Background())
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestAdzunaAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id123", r.URL.Query().Get("app_id"))
		assert.Equal(t, "key456", r.URL.Query().Get("app_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":1,"results":[
			{"id":"a1","title":"Warehouse Picker","description":"Pick and pack","company":{"display_name":"Nordlog"},"location":{"display_name":"Malmo"},"redirect_url":"https://adzuna.com/a1","created":"2026-08-01T05:00:00Z"}
		]}`))
	}))
	defer server.Close()

	adapter := NewAdzunaAdapter("id123", "key456", "se", "warehouse")
	adapter.baseURL = server.URL

	postings, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, postings, 1)

	assert.Equal(t, "adzuna", postings[0].Source)
	assert.Equal(t, "a1", postings[0].ExternalID)
	assert.Equal(t, "Nordlog", postings[0].Company)
	assert.Equal(t, "Malmo", postings[0].Location)
}

func TestAdzunaAdapter_MissingCredentialsSkips(t *testing.T) {
	adapter := NewAdzunaAdapter("", "", "se", "")
	postings, err := adapter.Fetch(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, postings)
}
