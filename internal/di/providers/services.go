package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/rosterapp/roster/internal/config"
	"github.com/rosterapp/roster/internal/logger"
	"github.com/rosterapp/roster/internal/service"
	"github.com/rosterapp/roster/internal/validation"
)

func serviceDeps(i do.Injector, component string) service.Deps {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.Deps{
		Store:     storeHandle.Backend,
		Emitter:   sseHandle.Manager,
		Validator: v,
		Logger:    log.WithComponent(component),
	}
}

func load(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return fn(ctx)
}

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideTagService provides the loaded tag store.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	svc := service.NewTagService(serviceDeps(i, "tags"))
	if err := load(svc.Load); err != nil {
		return nil, err
	}
	return svc, nil
}

// ProvideMemberService provides the loaded member store, indexed for search.
func ProvideMemberService(i do.Injector) (*service.MemberService, error) {
	index := do.MustInvoke[*SearchIndexHandle](i)

	svc := service.NewMemberService(serviceDeps(i, "members"), index.MemberIndex)
	if err := load(svc.Load); err != nil {
		return nil, err
	}
	return svc, nil
}

// ChatServiceHandle wraps the chat store so pending auto-replies are
// cancelled on shutdown.
type ChatServiceHandle struct {
	*service.ChatService
}

// Shutdown implements do.Shutdownable.
func (h *ChatServiceHandle) Shutdown() error {
	return h.Close()
}

// ProvideChatService provides the loaded chat store.
func ProvideChatService(i do.Injector) (*ChatServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	svc := service.NewChatService(serviceDeps(i, "chats"), service.ChatOptions{
		CurrentUserID: cfg.Chat.CurrentUserID,
		ReplyDelay:    cfg.Chat.AutoReplyDelay,
	})
	if err := load(svc.Load); err != nil {
		return nil, err
	}
	return &ChatServiceHandle{ChatService: svc}, nil
}
