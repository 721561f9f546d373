package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages map[string]string
	fail     bool
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if p.fail {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	if p.messages == nil {
		p.messages = map[string]string{}
	}
	p.messages[channel] = message.(string)
	cmd.SetVal(1)
	return cmd
}

type fakePush struct {
	sent []*messaging.Message
	err  error
}

func (f *fakePush) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "projects/test/messages/1", nil
}

func TestNotifyRegistrants(t *testing.T) {
	pub := &fakePublisher{}
	push := &fakePush{}
	svc := NewService(sl.Discard(), pub, push)
	svc.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	workshopID := uuid.New()
	users := []string{gofakeit.UUID(), gofakeit.UUID()}

	err := svc.NotifyRegistrants(context.Background(), workshopID, users, "Workshop updated", "New room")
	require.NoError(t, err)

	require.Len(t, pub.messages, 2)
	var got Message
	require.NoError(t, json.Unmarshal([]byte(pub.messages[UserChannel(users[0])]), &got))
	assert.Equal(t, workshopID, got.WorkshopID)
	assert.Equal(t, "Workshop updated", got.Title)
	assert.Equal(t, "New room", got.Body)

	require.Len(t, push.sent, 1)
	assert.Equal(t, WorkshopTopic(workshopID), push.sent[0].Topic)
	assert.Equal(t, "Workshop updated", push.sent[0].Notification.Title)
}

func TestNotifyRegistrantsOptionalChannels(t *testing.T) {
	svc := NewService(sl.Discard(), nil, nil)
	assert.NoError(t, svc.NotifyRegistrants(context.Background(), uuid.New(), []string{"u"}, "t", "b"))
}

func TestNotifyRegistrantsCollectsFailures(t *testing.T) {
	pub := &fakePublisher{fail: true}
	push := &fakePush{err: errors.New("quota exceeded")}
	svc := NewService(sl.Discard(), pub, push)

	err := svc.NotifyRegistrants(context.Background(), uuid.New(), []string{"a", "b"}, "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNames(t *testing.T) {
	id := uuid.MustParse("6f1c1a0e-7a8b-4c2d-9e3f-0a1b2c3d4e5f")
	assert.Equal(t, "notifications:user:abc", UserChannel("abc"))
	assert.Equal(t, "workshop-6f1c1a0e-7a8b-4c2d-9e3f-0a1b2c3d4e5f", WorkshopTopic(id))
}
