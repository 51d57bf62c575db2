package api

import (
	"github.com/rosterapp/roster/internal/search"
	"github.com/rosterapp/roster/internal/service"
)

// Services groups the roster state managers used by the API server.
type Services struct {
	Tag    *service.TagService
	Member *service.MemberService
	Chat   *service.ChatService
	Search *search.MemberIndex // Optional; only used for health reporting
}
