package team

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	members    []MemberWithCounts
	membersErr error

	memberCands    map[int64][]CandidateInfo
	memberCandsErr error

	ownCands    []CandidateInfo
	ownCandsErr error

	rosterCalls      int
	ownCalls         int
	memberCandsCalls int
	lastContextID    *int64
}

func (f *fakeGateway) MyTeamMembers(ctx context.Context) ([]MemberWithCounts, error) {
	f.rosterCalls++
	f.lastContextID = nil
	return f.members, f.membersErr
}

func (f *fakeGateway) TeamMembers(ctx context.Context, contextID int64) ([]MemberWithCounts, error) {
	f.rosterCalls++
	f.lastContextID = &contextID
	return f.members, f.membersErr
}

func (f *fakeGateway) MemberCandidates(ctx context.Context, memberID int64) ([]CandidateInfo, error) {
	f.memberCandsCalls++
	if f.memberCandsErr != nil {
		return nil, f.memberCandsErr
	}
	return f.memberCands[memberID], nil
}

func (f *fakeGateway) MyCandidates(ctx context.Context) ([]CandidateInfo, error) {
	f.ownCalls++
	return f.ownCands, f.ownCandsErr
}

func ptr(v int64) *int64 { return &v }

func TestRecruiterNeverFetchesRoster(t *testing.T) {
	gw := &fakeGateway{ownCands: []CandidateInfo{{ID: 1, FirstName: "Ada"}}}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{
		IsRecruiter:      true,
		HasTeamView:      true, // even if flags disagree, recruiter wins
		ContextID:        ptr(99),
		SelectedMemberID: ptr(42),
	})

	require.Equal(t, SourceOwn, view.Mode)
	require.Zero(t, gw.rosterCalls, "recruiter must never trigger a roster fetch")
	require.Zero(t, gw.memberCandsCalls)
	require.Equal(t, 1, gw.ownCalls)
	require.Len(t, view.Candidates, 1)
}

func TestManagerWithEmptyTeamFallsBackToOwn(t *testing.T) {
	gw := &fakeGateway{
		members:  []MemberWithCounts{},
		ownCands: []CandidateInfo{{ID: 2, FirstName: "Grace"}},
	}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{HasTeamView: true})

	require.True(t, view.HasNoTeamMembers)
	require.Equal(t, SourceOwn, view.Mode)
	require.Equal(t, "Grace", view.Candidates[0].FirstName)
	require.NoError(t, view.TeamErr)
}

func TestRosterShownSelectionRequired(t *testing.T) {
	gw := &fakeGateway{
		members: []MemberWithCounts{{ID: 7, FullName: "Lin", TeamMemberCount: 2, HasTeamMembers: true}},
	}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{HasTeamView: true})

	require.Equal(t, SourceNone, view.Mode)
	require.False(t, view.HasNoTeamMembers)
	require.Empty(t, view.Candidates)
	require.Zero(t, gw.ownCalls, "own candidates must not load without selection")
	require.Zero(t, gw.memberCandsCalls)
	require.Len(t, view.TeamMembers, 1)
}

func TestSelectedMemberCandidates(t *testing.T) {
	gw := &fakeGateway{
		members: []MemberWithCounts{{ID: 7, FullName: "Lin"}},
		memberCands: map[int64][]CandidateInfo{
			7: {{ID: 3, FirstName: "Alan"}, {ID: 4, FirstName: "Edsger"}},
		},
	}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{HasTeamView: true, SelectedMemberID: ptr(7)})

	require.Equal(t, SourceMember, view.Mode)
	require.Len(t, view.Candidates, 2)
	require.Zero(t, gw.ownCalls)
}

func TestContextIDSelectsSubtreeRoot(t *testing.T) {
	gw := &fakeGateway{members: []MemberWithCounts{{ID: 9}}}
	c := NewComposer(gw)

	c.Compose(context.Background(), ComposeInput{HasTeamView: true, ContextID: ptr(5)})

	require.NotNil(t, gw.lastContextID)
	require.Equal(t, int64(5), *gw.lastContextID)

	c.Compose(context.Background(), ComposeInput{HasTeamView: true})
	require.Nil(t, gw.lastContextID, "nil context id means own direct reports")
}

func TestRosterFailureIsNotAnEmptyTeam(t *testing.T) {
	bang := errors.New("team api down")
	gw := &fakeGateway{
		membersErr: bang,
		ownCands:   []CandidateInfo{{ID: 1}},
	}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{HasTeamView: true})

	require.ErrorIs(t, view.TeamErr, bang)
	require.False(t, view.HasNoTeamMembers, "an error must never read as zero members")
	require.Equal(t, SourceNone, view.Mode)
	require.Zero(t, gw.ownCalls, "fallback must not trigger off a failed roster call")
}

func TestRosterFailureWithSelectionStillServesMember(t *testing.T) {
	bang := errors.New("team api down")
	gw := &fakeGateway{
		membersErr:  bang,
		memberCands: map[int64][]CandidateInfo{7: {{ID: 3}}},
	}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{HasTeamView: true, SelectedMemberID: ptr(7)})

	require.ErrorIs(t, view.TeamErr, bang)
	require.Equal(t, SourceMember, view.Mode)
	require.Len(t, view.Candidates, 1, "previously selected member's candidates still resolve")
}

func TestActiveSourceErrorOnly(t *testing.T) {
	bang := errors.New("candidates query failed")
	gw := &fakeGateway{
		members:        []MemberWithCounts{{ID: 7}},
		memberCandsErr: bang,
	}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{HasTeamView: true, SelectedMemberID: ptr(7)})

	require.Equal(t, SourceMember, view.Mode)
	require.ErrorIs(t, view.CandidatesErr, bang)
	require.NoError(t, view.TeamErr)
	require.Empty(t, view.Candidates)
}

func TestNoTeamViewNoRecruiter(t *testing.T) {
	gw := &fakeGateway{}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{})

	require.Equal(t, SourceNone, view.Mode)
	require.Zero(t, gw.rosterCalls)
	require.Zero(t, gw.ownCalls)
	require.Empty(t, view.TeamMembers)
}

func TestOwnCandidatesErrorSurfacesAsData(t *testing.T) {
	bang := errors.New("own query failed")
	gw := &fakeGateway{ownCandsErr: bang}
	c := NewComposer(gw)

	view := c.Compose(context.Background(), ComposeInput{IsRecruiter: true})

	require.Equal(t, SourceOwn, view.Mode)
	require.ErrorIs(t, view.CandidatesErr, bang)
	require.Empty(t, view.Candidates)
}
