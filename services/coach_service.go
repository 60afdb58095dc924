package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nbowman189/vitruvian/config"
	"github.com/nbowman189/vitruvian/models"
	"github.com/nbowman189/vitruvian/pkg/logger"
)

const coachSystemPrompt = `You are a supportive health and fitness coach. ` +
	`The user tracks daily weight, body fat and habit completion. Use the ` +
	`available tools to record data or look up progress when the user asks; ` +
	`otherwise answer briefly and concretely.`

// maxToolRounds bounds the tool-call loop for a single user message.
const maxToolRounds = 5

type CoachService struct {
	chat ChatClient
	rt   *RealtimeHub
	log  *logger.Logger
}

func NewCoachService(chat ChatClient, rt *RealtimeHub, log *logger.Logger) *CoachService {
	return &CoachService{chat: chat, rt: rt, log: log.With("service", "CoachService")}
}

func coachTools() []ToolDefinition {
	num := func(desc string) map[string]any {
		return map[string]any{"type": "number", "description": desc}
	}
	return []ToolDefinition{
		{Type: "function", Function: ToolFunction{
			Name:        "record_checkin",
			Description: "Record today's weigh-in (weight in lbs, optional body fat percent).",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"weight":   num("Weight in pounds"),
					"body_fat": num("Body fat percentage, omit if unknown"),
				},
				"required": []string{"weight"},
			},
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "log_behavior",
			Description: "Mark a behavior completed (or not) for today by its id.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"behavior_id": num("Behavior definition id"),
					"completed":   map[string]any{"type": "boolean"},
				},
				"required": []string{"behavior_id", "completed"},
			},
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "list_behaviors",
			Description: "List the user's active behaviors with their ids.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "get_trend",
			Description: "Get the recent weight and body-fat trend.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"days": num("How many days back to look, default 30"),
				},
			},
		}},
	}
}

// ActiveConversation returns the user's active conversation, creating one if
// none exists. Only one conversation per user is active at a time.
func (s *CoachService) ActiveConversation(userID uint) (*models.ConversationLog, error) {
	var conv models.ConversationLog
	err := config.DB.
		Where("user_id = ? AND active = ?", userID, true).
		Order("started_at desc").
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed, _ := json.Marshal([]ChatMessage{{Role: "system", Content: coachSystemPrompt}})
	conv = models.ConversationLog{
		UserID:       userID,
		StartedAt:    time.Now(),
		Messages:     datatypes.JSON(seed),
		MessageCount: 1,
		Active:       true,
	}
	if err := config.DB.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// Reset deactivates the user's active conversation; the next message starts
// a fresh one.
func (s *CoachService) Reset(userID uint) error {
	return config.DB.Model(&models.ConversationLog{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false).Error
}

// History returns the transcript of the active conversation, minus the
// system prompt and tool plumbing.
func (s *CoachService) History(userID uint) ([]ChatMessage, error) {
	conv, err := s.ActiveConversation(userID)
	if err != nil {
		return nil, err
	}

	var msgs []ChatMessage
	if err := json.Unmarshal(conv.Messages, &msgs); err != nil {
		return nil, fmt.Errorf("conversation %d: corrupt message log: %w", conv.ID, err)
	}

	visible := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" || m.Role == "tool" {
			continue
		}
		if m.Role == "assistant" && m.Content == "" {
			continue // tool-call-only turns
		}
		visible = append(visible, m)
	}
	return visible, nil
}

// SendMessage appends the user's message, runs the model (executing any tool
// calls it makes, one or a whole batch per assistant turn), persists the
// updated transcript, and returns the assistant's reply.
func (s *CoachService) SendMessage(ctx context.Context, userID uint, text string) (string, error) {
	conv, err := s.ActiveConversation(userID)
	if err != nil {
		return "", err
	}

	var msgs []ChatMessage
	if err := json.Unmarshal(conv.Messages, &msgs); err != nil {
		return "", fmt.Errorf("conversation %d: corrupt message log: %w", conv.ID, err)
	}

	msgs = append(msgs, ChatMessage{Role: "user", Content: text})
	toolCalls := 0

	var reply string
	limitHit := false
	for round := 0; ; round++ {
		if round >= maxToolRounds {
			limitHit = true
			break
		}

		assistant, err := s.chat.CreateChatCompletion(ctx, msgs, coachTools())
		if err != nil {
			return "", err
		}
		msgs = append(msgs, assistant)

		if len(assistant.ToolCalls) == 0 {
			reply = assistant.Content
			break
		}

		// The model may batch several calls into one turn; run them all in
		// order, each producing its own tool message.
		for _, call := range assistant.ToolCalls {
			toolCalls++
			result := s.executeTool(userID, call)
			msgs = append(msgs, ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    result,
			})
		}
	}

	// Persist even on the limit path: earlier rounds may already have written
	// check-ins or behavior logs, and the transcript has to reflect them.
	raw, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	conv.Messages = datatypes.JSON(raw)
	conv.MessageCount = len(msgs)
	conv.ToolCallCount += toolCalls
	if err := config.DB.Save(conv).Error; err != nil {
		return "", err
	}

	if limitHit {
		return "", fmt.Errorf("conversation %d: tool call limit reached", conv.ID)
	}

	if s.rt != nil {
		s.rt.Broadcast(userID, map[string]any{"kind": "coach.reply", "message": reply})
	}
	return reply, nil
}

// executeTool dispatches one tool call. Errors are reported back to the
// model as the tool result rather than failing the whole exchange.
func (s *CoachService) executeTool(userID uint, call ToolCall) string {
	fail := func(err error) string {
		s.log.Warn("tool call failed", "tool", call.Function.Name, "err", err)
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}

	switch call.Function.Name {
	case "record_checkin":
		var args struct {
			Weight  float64 `json:"weight"`
			BodyFat float64 `json:"body_fat"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fail(err)
		}
		checkin, err := UpsertCheckIn(userID, time.Now(), args.Weight, args.BodyFat)
		if err != nil {
			return fail(err)
		}
		out, _ := json.Marshal(map[string]any{
			"date":    checkin.Date.Format("2006-01-02"),
			"weight":  checkin.Weight,
			"bodyFat": checkin.BodyFat,
		})
		return string(out)

	case "log_behavior":
		var args struct {
			BehaviorID uint `json:"behavior_id"`
			Completed  bool `json:"completed"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fail(err)
		}
		entry, err := UpsertBehaviorLog(userID, args.BehaviorID, time.Now(), args.Completed)
		if err != nil {
			return fail(err)
		}
		out, _ := json.Marshal(map[string]any{
			"behaviorId": entry.BehaviorID,
			"date":       entry.Date.Format("2006-01-02"),
			"completed":  entry.Completed,
		})
		return string(out)

	case "list_behaviors":
		defs, err := ListBehaviors(userID, true)
		if err != nil {
			return fail(err)
		}
		type item struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		}
		items := make([]item, 0, len(defs))
		for _, d := range defs {
			items = append(items, item{ID: d.ID, Name: d.Name})
		}
		out, _ := json.Marshal(items)
		return string(out)

	case "get_trend":
		var args struct {
			Days int `json:"days"`
		}
		_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
		if args.Days <= 0 {
			args.Days = 30
		}
		points, err := GetTrend(userID, time.Now().AddDate(0, 0, -args.Days), time.Now())
		if err != nil {
			return fail(err)
		}
		out, _ := json.Marshal(points)
		return string(out)

	default:
		return fail(fmt.Errorf("unknown tool %q", call.Function.Name))
	}
}
