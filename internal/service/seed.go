package service

import (
	"time"

	"github.com/rosterapp/roster/internal/domain"
)

// Fixed ids of the records written on first run.
const (
	seedTagEngineer    = "tag-seed-engineer"
	seedTagPhotography = "tag-seed-photography"
	seedTagDesigner    = "tag-seed-designer"
	seedTagAnimation   = "tag-seed-animation"

	SeedMemberTaro   = "mem-seed-1"
	SeedMemberHanako = "mem-seed-2"
	// seedMemberFormer is the counterpart of the second sample chat. It has no
	// member record, like a member who has since left the club.
	seedMemberFormer = "mem-seed-3"

	seedChatHanako = "chat-seed-1"
	seedChatFormer = "chat-seed-2"
)

func seedTags() []domain.Tag {
	return []domain.Tag{
		{ID: seedTagEngineer, Name: "Engineer", Category: domain.TagCategoryPosition, Color: "#2196f3"},
		{ID: seedTagPhotography, Name: "Photography", Category: domain.TagCategoryHobby, Color: "#4caf50"},
		{ID: seedTagDesigner, Name: "Designer", Category: domain.TagCategoryPosition, Color: "#f44336"},
		{ID: seedTagAnimation, Name: "Animation", Category: domain.TagCategoryHobby, Color: "#9c27b0"},
	}
}

func seedMembers(now time.Time) []domain.Member {
	tags := seedTags()
	return []domain.Member{
		{
			ID:           SeedMemberTaro,
			Name:         "Taro Yamada",
			ImageURL:     "https://source.unsplash.com/random/200x200?face-1",
			Introduction: "I work as a front-end engineer and I am strongest with React and TypeScript. My hobby is photography; on weekends I walk around town with my camera.",
			Tags:         []domain.Tag{tags[0], tags[1]},
			IsEditable:   true,
			CreatedAt:    now,
		},
		{
			ID:           SeedMemberHanako,
			Name:         "Hanako Suzuki",
			ImageURL:     "https://source.unsplash.com/random/200x200?face-2",
			Introduction: "I am a UI designer who cares about user experience. Lately I have been getting into animation work as well.",
			Tags:         []domain.Tag{tags[2], tags[3]},
			IsEditable:   true,
			CreatedAt:    now,
		},
	}
}

// seedChats returns the sample conversations and their message logs.
// The second chat's only message is part of its log so LastMessage always
// mirrors the newest logged message.
func seedChats(currentUserID string, now time.Time) ([]domain.Chat, map[string][]domain.Message) {
	msg := func(id, from, to, content string, ago time.Duration) domain.Message {
		return domain.Message{
			ID:         id,
			SenderID:   from,
			ReceiverID: to,
			Content:    content,
			Timestamp:  now.Add(-ago),
			IsRead:     true,
		}
	}

	hanako := []domain.Message{
		msg("msg-seed-1", currentUserID, SeedMemberHanako, "Hello!", 60*time.Minute),
		msg("msg-seed-2", SeedMemberHanako, currentUserID, "Hi, how are you?", 50*time.Minute),
		msg("msg-seed-3", currentUserID, SeedMemberHanako, "I'm great! How is the project going?", 40*time.Minute),
		msg("msg-seed-4", SeedMemberHanako, currentUserID, "It's going well. Thanks!", 30*time.Minute),
	}
	former := []domain.Message{
		msg("msg-seed-5", seedMemberFormer, currentUserID, "I'll be in touch again!", 24*time.Hour),
	}

	chat := func(id, other string, log []domain.Message) domain.Chat {
		last := log[len(log)-1]
		return domain.Chat{
			ID:           id,
			Participants: [2]string{currentUserID, other},
			LastMessage:  &last,
			UpdatedAt:    last.Timestamp,
		}
	}

	chats := []domain.Chat{
		chat(seedChatHanako, SeedMemberHanako, hanako),
		chat(seedChatFormer, seedMemberFormer, former),
	}

	messages := map[string][]domain.Message{
		seedChatHanako: hanako,
		seedChatFormer: former,
	}
	return chats, messages
}

// autoReplies are the canned responses of the simulated counterparts.
var autoReplies = []string{
	"Got it!",
	"Thank you!",
	"I see, understood.",
	"That's wonderful!",
	"Could you tell me a bit more?",
	"Understood. I'll take care of it later.",
	"What a lovely idea!",
	"Thanks for reaching out.",
	"I'll think it over!",
	"Okay! I'll be in touch.",
}
