package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/events"
	"github.com/spec-kit/bart-incident-bot/internal/graph"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

type fakeDirectory struct {
	users []domain.User
	err   error
	calls int
}

func (f *fakeDirectory) SearchUsers(_ context.Context, _ string) ([]domain.User, error) {
	f.calls++
	return f.users, f.err
}

func (f *fakeDirectory) GroupMembers(_ context.Context, _ string) ([]domain.User, error) {
	f.calls++
	return f.users, f.err
}

func newUserService(dir Directory, groupID string) *UserService {
	return NewUserService(UserDependencies{
		Directory:      dir,
		UserConfigRepo: repository.NewUserConfigurationRepository(persistence.NewMemoryTableStore()),
		GroupID:        groupID,
	})
}

func TestSearchUsersBlankQuery(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newUserService(dir, "")
	got, err := svc.SearchUsers(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, dir.calls)
}

func TestSearchUsersMapsGraphErrors(t *testing.T) {
	dir := &fakeDirectory{err: &graph.ErrorResponse{StatusCode: http.StatusTooManyRequests, Message: "throttled", CorrelationID: "req-9"}}
	svc := newUserService(dir, "")

	_, err := svc.SearchUsers(context.Background(), "da")
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusTooManyRequests, de.HTTPStatus)
	assert.Equal(t, "req-9", de.Details["correlationId"])

	dir.err = errors.New("dial tcp: refused")
	_, err = svc.SearchUsers(context.Background(), "da")
	assert.Equal(t, http.StatusBadGateway, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGroupMembersWithoutCache(t *testing.T) {
	dir := &fakeDirectory{users: []domain.User{{ID: "1", DisplayName: "Dana"}}}
	svc := newUserService(dir, "group-1")

	got, err := svc.GroupMembers(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = newUserService(dir, "").GroupMembers(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestUserConfiguration(t *testing.T) {
	svc := newUserService(&fakeDirectory{}, "")
	ctx := context.Background()

	assert.True(t, apperrors.IsCode(svc.SaveUserConfiguration(ctx, &domain.UserConfiguration{RowKey: "aad-1"}), apperrors.CodeValidation))

	require.NoError(t, svc.SaveUserConfiguration(ctx, &domain.UserConfiguration{RowKey: "aad-1", ConversationID: "a:1"}))
	cfg, err := svc.GetUserConfiguration(ctx, "aad-1")
	require.NoError(t, err)
	assert.Equal(t, "a:1", cfg.ConversationID)
	assert.Equal(t, domain.UserConfigurationPartition, cfg.PartitionKey)
}

func TestNotificationWebhook(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewNotificationService(zap.NewNop(), config.NotificationConfig{WebhookURL: srv.URL}, srv.Client())
	require.NoError(t, n.Notify(context.Background(), events.Event{Type: events.EventIncidentCreated, IncidentNumber: "INC001"}))
	assert.Equal(t, int32(1), hits.Load())

	quiet := NewNotificationService(zap.NewNop(), config.NotificationConfig{}, srv.Client())
	require.NoError(t, quiet.Notify(context.Background(), events.Event{Type: events.EventIncidentCreated}))
	assert.Equal(t, int32(1), hits.Load())
}
