package controllers

import (
	"context"
	"net/http"

	"github.com/ecocampus-app/ecocampus-backend/api/responses"
	"github.com/ecocampus-app/ecocampus-backend/api/validators"
	"github.com/ecocampus-app/ecocampus-backend/pkg/assistant"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
)

const assistantSystemPrompt = "You are EcoCampus, a friendly campus sustainability assistant. " +
	"Answer questions about recycling, energy saving, campus eco events, and green habits. " +
	"Keep answers short and practical for students."

const maxConversationMessages = 20

// AssistantCompleter is the language-model surface the chat endpoint needs.
type AssistantCompleter interface {
	Complete(ctx context.Context, messages []assistant.Message) (string, error)
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,dive"`
}

// AssistantChat proxies a student conversation to the language model.
func AssistantChat(client AssistantCompleter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "assistant is not configured"))
			return
		}
		if _, err := currentUserID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body chatRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(body.Messages) > maxConversationMessages {
			body.Messages = body.Messages[len(body.Messages)-maxConversationMessages:]
		}

		messages := make([]assistant.Message, 0, len(body.Messages)+1)
		messages = append(messages, assistant.Message{Role: "system", Content: assistantSystemPrompt})
		for _, m := range body.Messages {
			messages = append(messages, assistant.Message{Role: m.Role, Content: m.Content})
		}

		reply, err := client.Complete(r.Context(), messages)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"reply": reply})
	}
}
