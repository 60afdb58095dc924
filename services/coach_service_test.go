package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbowman189/vitruvian/models"
	"github.com/nbowman189/vitruvian/pkg/logger"
)

// fakeChatClient replays a scripted sequence of assistant turns and records
// what it was called with.
type fakeChatClient struct {
	script []ChatMessage
	calls  [][]ChatMessage
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, messages []ChatMessage, _ []ToolDefinition) (ChatMessage, error) {
	f.calls = append(f.calls, append([]ChatMessage{}, messages...))
	if len(f.script) == 0 {
		return ChatMessage{Role: "assistant", Content: "out of script"}, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next, nil
}

func newTestCoach(t *testing.T, script ...ChatMessage) (*CoachService, *fakeChatClient) {
	t.Helper()
	log, err := logger.New("dev")
	require.NoError(t, err)
	fake := &fakeChatClient{script: script}
	return NewCoachService(fake, nil, log), fake
}

func TestSendMessagePlainReply(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "coach@example.com")

	svc, fake := newTestCoach(t, ChatMessage{Role: "assistant", Content: "Keep it up!"})

	reply, err := svc.SendMessage(context.Background(), user.ID, "how am I doing?")
	require.NoError(t, err)
	assert.Equal(t, "Keep it up!", reply)

	// system + user + assistant persisted.
	var conv models.ConversationLog
	require.NoError(t, db.Where("user_id = ? AND active = ?", user.ID, true).First(&conv).Error)
	assert.Equal(t, 3, conv.MessageCount)
	assert.Equal(t, 0, conv.ToolCallCount)

	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal(conv.Messages, &msgs))
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "how am I doing?", msgs[1].Content)
	assert.Equal(t, "Keep it up!", msgs[2].Content)

	// The model saw the system prompt and the user message.
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "system", fake.calls[0][0].Role)
}

func TestSendMessageSingleToolCall(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "tool@example.com")

	svc, _ := newTestCoach(t,
		ChatMessage{Role: "assistant", ToolCalls: []ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: ToolCallFunction{
				Name:      "record_checkin",
				Arguments: `{"weight": 182.5, "body_fat": 17.9}`,
			},
		}}},
		ChatMessage{Role: "assistant", Content: "Logged 182.5 lbs."},
	)

	reply, err := svc.SendMessage(context.Background(), user.ID, "weigh-in: 182.5, bf 17.9")
	require.NoError(t, err)
	assert.Equal(t, "Logged 182.5 lbs.", reply)

	// The tool actually wrote the check-in.
	checkin, err := GetCheckIn(user.ID, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 182.5, checkin.Weight, 0.001)
	assert.InDelta(t, 17.9, checkin.BodyFat, 0.001)

	var conv models.ConversationLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&conv).Error)
	assert.Equal(t, 1, conv.ToolCallCount)

	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal(conv.Messages, &msgs))
	// system, user, assistant(tool_calls), tool, assistant
	require.Len(t, msgs, 5)
	assert.Equal(t, "tool", msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
}

func TestSendMessageBatchedToolCalls(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "batch@example.com")

	def, err := CreateBehavior(user.ID, "stretch", "")
	require.NoError(t, err)

	svc, fake := newTestCoach(t,
		ChatMessage{Role: "assistant", ToolCalls: []ToolCall{
			{
				ID:   "call_a",
				Type: "function",
				Function: ToolCallFunction{
					Name:      "record_checkin",
					Arguments: `{"weight": 181.0}`,
				},
			},
			{
				ID:   "call_b",
				Type: "function",
				Function: ToolCallFunction{
					Name:      "log_behavior",
					Arguments: `{"behavior_id": ` + jsonUint(def.ID) + `, "completed": true}`,
				},
			},
		}},
		ChatMessage{Role: "assistant", Content: "Both recorded."},
	)

	reply, err := svc.SendMessage(context.Background(), user.ID, "weighed 181 and stretched")
	require.NoError(t, err)
	assert.Equal(t, "Both recorded.", reply)

	// Both tools ran.
	checkin, err := GetCheckIn(user.ID, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 181.0, checkin.Weight, 0.001)

	day, err := GetBehaviorDay(user.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.True(t, day[0].Completed)

	var conv models.ConversationLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&conv).Error)
	assert.Equal(t, 2, conv.ToolCallCount)

	// Each batched call produced its own tool message before the follow-up.
	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal(conv.Messages, &msgs))
	require.Len(t, msgs, 6)
	assert.Equal(t, "call_a", msgs[3].ToolCallID)
	assert.Equal(t, "call_b", msgs[4].ToolCallID)

	// The follow-up completion saw both tool results.
	require.Len(t, fake.calls, 2)
	last := fake.calls[1]
	assert.Equal(t, "tool", last[len(last)-1].Role)
	assert.Equal(t, "tool", last[len(last)-2].Role)
}

func TestSendMessageUnknownToolReportedToModel(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "unknown@example.com")

	svc, fake := newTestCoach(t,
		ChatMessage{Role: "assistant", ToolCalls: []ToolCall{{
			ID:       "call_x",
			Type:     "function",
			Function: ToolCallFunction{Name: "no_such_tool", Arguments: `{}`},
		}}},
		ChatMessage{Role: "assistant", Content: "Sorry, couldn't do that."},
	)

	reply, err := svc.SendMessage(context.Background(), user.ID, "do the thing")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, couldn't do that.", reply)

	// The error went back to the model as the tool result.
	last := fake.calls[1]
	assert.Contains(t, last[len(last)-1].Content, "unknown tool")
}

func TestSendMessageToolLoopBounded(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "loop@example.com")

	// A model that never stops calling tools.
	endless := make([]ChatMessage, 0, maxToolRounds+1)
	for i := 0; i <= maxToolRounds; i++ {
		endless = append(endless, ChatMessage{Role: "assistant", ToolCalls: []ToolCall{{
			ID:       "call_loop",
			Type:     "function",
			Function: ToolCallFunction{Name: "record_checkin", Arguments: `{"weight": 179.0}`},
		}}})
	}

	svc, _ := newTestCoach(t, endless...)

	_, err := svc.SendMessage(context.Background(), user.ID, "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool call limit")

	// The earlier rounds already wrote data, so the transcript is persisted
	// even though the exchange failed.
	_, err = GetCheckIn(user.ID, time.Now())
	require.NoError(t, err)

	var conv models.ConversationLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&conv).Error)
	assert.Equal(t, maxToolRounds, conv.ToolCallCount)

	// system + user, then an assistant/tool pair per round.
	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal(conv.Messages, &msgs))
	require.Len(t, msgs, 2+2*maxToolRounds)
	assert.Equal(t, "tool", msgs[len(msgs)-1].Role)
}

func TestResetStartsFreshConversation(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "reset@example.com")

	svc, _ := newTestCoach(t,
		ChatMessage{Role: "assistant", Content: "hello"},
		ChatMessage{Role: "assistant", Content: "fresh start"},
	)

	_, err := svc.SendMessage(context.Background(), user.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(user.ID))

	_, err = svc.SendMessage(context.Background(), user.ID, "hi again")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ConversationLog{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var active int64
	require.NoError(t, db.Model(&models.ConversationLog{}).Where("user_id = ? AND active = ?", user.ID, true).Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

func TestHistoryHidesPlumbing(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "history@example.com")

	svc, _ := newTestCoach(t,
		ChatMessage{Role: "assistant", ToolCalls: []ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: ToolCallFunction{Name: "list_behaviors", Arguments: `{}`},
		}}},
		ChatMessage{Role: "assistant", Content: "You have no behaviors yet."},
	)

	_, err := svc.SendMessage(context.Background(), user.ID, "what do I track?")
	require.NoError(t, err)

	history, err := svc.History(user.ID)
	require.NoError(t, err)

	// Just the user turn and the final assistant reply.
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "You have no behaviors yet.", history[1].Content)
}

func jsonUint(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}
