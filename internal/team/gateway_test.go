package team

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
)

func TestHTTPGatewayFetchesRoster(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/team/my-team-members":
			_ = json.NewEncoder(w).Encode(membersEnvelope{
				TeamMembers: []MemberWithCounts{
					{ID: 11, FullName: "Riley Recruiter", CandidateCount: 4},
				},
				Total: 1,
			})
		case "/team/members/11/candidates":
			_ = json.NewEncoder(w).Encode(candidatesEnvelope{
				Candidates: []CandidateInfo{{ID: 101, FirstName: "Jamie", LastName: "Nguyen"}},
				Total:      1,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "portal-token", 2*time.Second)

	members, err := gw.MyTeamMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Riley Recruiter", members[0].FullName)
	require.Equal(t, "Bearer portal-token", gotAuth)

	cands, err := gw.MemberCandidates(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	require.Equal(t, "Jamie", cands[0].FirstName)
}

func TestHTTPGatewayUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "portal-token", 2*time.Second)

	_, err := gw.MyCandidates(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrUpstream))
}

func TestHTTPGatewayRetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(membersEnvelope{})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "portal-token", 2*time.Second)

	_, err := gw.TeamMembers(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
