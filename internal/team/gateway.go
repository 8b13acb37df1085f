package team

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
)

// Gateway is the hierarchy data source the composer consumes, bound to
// one viewer. Backed either by the local service or by a remote team API
// when the portal runs split from the hierarchy service.
type Gateway interface {
	MyTeamMembers(ctx context.Context) ([]MemberWithCounts, error)
	TeamMembers(ctx context.Context, contextID int64) ([]MemberWithCounts, error)
	MemberCandidates(ctx context.Context, memberID int64) ([]CandidateInfo, error)
	MyCandidates(ctx context.Context) ([]CandidateInfo, error)
}

// LocalGateway adapts the in-process Service to the Gateway contract.
type LocalGateway struct {
	service  *Service
	tenantID int64
	viewerID int64
}

// NewLocalGateway binds the service to a viewer.
func NewLocalGateway(service *Service, tenantID, viewerID int64) *LocalGateway {
	return &LocalGateway{service: service, tenantID: tenantID, viewerID: viewerID}
}

func (g *LocalGateway) MyTeamMembers(ctx context.Context) ([]MemberWithCounts, error) {
	return g.service.TeamMembers(ctx, g.tenantID, g.viewerID)
}

func (g *LocalGateway) TeamMembers(ctx context.Context, contextID int64) ([]MemberWithCounts, error) {
	return g.service.TeamMembers(ctx, g.tenantID, contextID)
}

func (g *LocalGateway) MemberCandidates(ctx context.Context, memberID int64) ([]CandidateInfo, error) {
	return g.service.MemberCandidates(ctx, g.tenantID, memberID)
}

func (g *LocalGateway) MyCandidates(ctx context.Context) ([]CandidateInfo, error) {
	return g.service.MyCandidates(ctx, g.tenantID, g.viewerID)
}

// HTTPGateway consumes a remote team API over HTTPS with a bearer token.
// Failed requests get exactly one retry; beyond that the error is
// terminal and surfaces to the composer.
type HTTPGateway struct {
	client *resty.Client
}

// NewHTTPGateway constructs the remote gateway.
func NewHTTPGateway(baseURL, token string, timeout time.Duration) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode() >= http.StatusInternalServerError)
		})
	return &HTTPGateway{client: client}
}

type membersEnvelope struct {
	TeamMembers []MemberWithCounts `json:"team_members"`
	Total       int                `json:"total"`
}

type candidatesEnvelope struct {
	Candidates []CandidateInfo `json:"candidates"`
	Total      int             `json:"total"`
}

func (g *HTTPGateway) MyTeamMembers(ctx context.Context) ([]MemberWithCounts, error) {
	var out membersEnvelope
	if err := g.getJSON(ctx, "/team/my-team-members", &out); err != nil {
		return nil, err
	}
	return out.TeamMembers, nil
}

func (g *HTTPGateway) TeamMembers(ctx context.Context, contextID int64) ([]MemberWithCounts, error) {
	var out membersEnvelope
	path := "/team/" + strconv.FormatInt(contextID, 10) + "/team-members"
	if err := g.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.TeamMembers, nil
}

func (g *HTTPGateway) MemberCandidates(ctx context.Context, memberID int64) ([]CandidateInfo, error) {
	var out candidatesEnvelope
	path := "/team/members/" + strconv.FormatInt(memberID, 10) + "/candidates"
	if err := g.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Candidates, nil
}

func (g *HTTPGateway) MyCandidates(ctx context.Context) ([]CandidateInfo, error) {
	var out candidatesEnvelope
	if err := g.getJSON(ctx, "/candidates/assignments/my-candidates", &out); err != nil {
		return nil, err
	}
	return out.Candidates, nil
}

func (g *HTTPGateway) getJSON(ctx context.Context, path string, dest any) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(dest).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s returned %d", httpx.ErrUpstream, path, resp.StatusCode())
	}
	return nil
}

var (
	_ Gateway = (*LocalGateway)(nil)
	_ Gateway = (*HTTPGateway)(nil)
)
