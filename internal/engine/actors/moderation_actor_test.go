package actors

import (
	"testing"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"
)

const testReportThreshold = 3

type moderationTestFixture struct {
	env           *actorTestEnv
	postPID       *actor.PID
	moderationPID *actor.PID

	author      uuid.UUID
	communityID uuid.UUID
	post        *models.Post
}

func newModerationFixture(t *testing.T) *moderationTestFixture {
	t.Helper()
	env := newActorTestEnv(t)

	f := &moderationTestFixture{
		env: env,
		postPID: env.spawn(func() actor.Actor {
			return NewPostActor(env.store, env.registry, env.metrics, 20)
		}),
		moderationPID: env.spawn(func() actor.Actor {
			return NewModerationActor(env.store, env.registry, env.metrics, testReportThreshold)
		}),
		author:      uuid.New(),
		communityID: uuid.New(),
	}

	seedMembership(t, env, f.author, f.communityID, "brisk-otter-1a2b")
	f.post = env.ask(t, f.postPID, &CreatePostMsg{
		UserID:      f.author,
		CommunityID: f.communityID,
		Content:     "borderline content",
	}).(*models.Post)

	return f
}

func (f *moderationTestFixture) report(t *testing.T, userID uuid.UUID) *models.ReportResult {
	t.Helper()
	result := f.env.ask(t, f.moderationPID, &ReportPostMsg{UserID: userID, PostID: f.post.ID})
	report, ok := result.(*models.ReportResult)
	assert.True(t, ok, "expected report result, got %T", result)
	return report
}

func TestReportBelowThresholdKeepsPost(t *testing.T) {
	f := newModerationFixture(t)

	for i := 0; i < testReportThreshold-1; i++ {
		reporter := uuid.New()
		seedMembership(t, f.env, reporter, f.communityID, "reporter-"+reporter.String()[:8])
		report := f.report(t, reporter)
		assert.True(t, report.Applied)
		assert.False(t, report.Removed)
		assert.Equal(t, i+1, report.ReportCount)
	}

	// One short of the threshold: the post is still served.
	result := f.env.ask(t, f.postPID, &GetPostMsg{PostID: f.post.ID})
	_, ok := result.(*models.Post)
	assert.True(t, ok, "post should still exist, got %T", result)
}

func TestReportAtThresholdRemovesPost(t *testing.T) {
	f := newModerationFixture(t)

	var last *models.ReportResult
	for i := 0; i < testReportThreshold; i++ {
		reporter := uuid.New()
		seedMembership(t, f.env, reporter, f.communityID, "reporter-"+reporter.String()[:8])
		last = f.report(t, reporter)
	}

	assert.True(t, last.Removed)
	assert.Equal(t, testReportThreshold, last.ReportCount)

	result := f.env.ask(t, f.postPID, &GetPostMsg{PostID: f.post.ID})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestRepeatReportsBySameHandleDoNotStack(t *testing.T) {
	f := newModerationFixture(t)

	reporter := uuid.New()
	seedMembership(t, f.env, reporter, f.communityID, "quiet-heron-9f3c")

	first := f.report(t, reporter)
	assert.True(t, first.Applied)
	assert.Equal(t, 1, first.ReportCount)

	for i := 0; i < testReportThreshold*2; i++ {
		repeat := f.report(t, reporter)
		assert.False(t, repeat.Applied)
		assert.Equal(t, 1, repeat.ReportCount)
		assert.False(t, repeat.Removed)
	}

	result := f.env.ask(t, f.postPID, &GetPostMsg{PostID: f.post.ID})
	_, ok := result.(*models.Post)
	assert.True(t, ok, "post should survive repeat reports from one handle")
}

func TestReportRequiresMembership(t *testing.T) {
	f := newModerationFixture(t)

	result := f.env.ask(t, f.moderationPID, &ReportPostMsg{UserID: uuid.New(), PostID: f.post.ID})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotMember, appErr.Code)
}

func TestReportMissingPost(t *testing.T) {
	f := newModerationFixture(t)

	result := f.env.ask(t, f.moderationPID, &ReportPostMsg{UserID: f.author, PostID: uuid.New()})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestModerationQueueAndAdminDelete(t *testing.T) {
	f := newModerationFixture(t)

	reporter := uuid.New()
	seedMembership(t, f.env, reporter, f.communityID, "quiet-heron-9f3c")
	f.report(t, reporter)

	queue := f.env.ask(t, f.moderationPID, &GetReportedPostsMsg{MinReports: 1, Limit: 10}).([]*models.Post)
	assert.Len(t, queue, 1)
	assert.Equal(t, f.post.ID, queue[0].ID)

	status := f.env.ask(t, f.moderationPID, &AdminDeletePostMsg{PostID: f.post.ID}).(*models.StatusResponse)
	assert.True(t, status.Success)

	result := f.env.ask(t, f.moderationPID, &AdminDeletePostMsg{PostID: f.post.ID})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}
