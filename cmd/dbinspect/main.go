// Package main prints a summary of a roster Badger database.
//
// Usage:
//
//	DB_PATH=~/Roster/data/db go run ./cmd/dbinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/rosterapp/roster/internal/domain"
	"github.com/rosterapp/roster/internal/store"
)

const prefix = "roster:"

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Roster/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	values := make(map[string][]byte)
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			key := strings.TrimPrefix(string(item.Key()), prefix)
			values[key] = val
			fmt.Printf("%-16s %6d bytes\n", key, len(val))
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read database: %v", err)
	}
	fmt.Println()

	var tags []domain.Tag
	if decode(values, store.KeyTags, &tags) {
		fmt.Printf("Tags: %d\n", len(tags))
		for _, t := range tags {
			fmt.Printf("  %-24s %-8s %s\n", t.Name, t.Category, t.DisplayColor())
		}
	}

	var members []domain.Member
	if decode(values, store.KeyMembers, &members) {
		fmt.Printf("Members: %d\n", len(members))
		for i, m := range members {
			fmt.Printf("  [%d] %s (%s), %d tags\n", i, m.Name, m.ID, len(m.Tags))
		}
	}

	var chats []domain.Chat
	var logs map[string][]domain.Message
	if decode(values, store.KeyChats, &chats) {
		decode(values, store.KeyChatMessages, &logs)
		fmt.Printf("Chats: %d\n", len(chats))
		for _, c := range chats {
			msgs := logs[c.ID]
			unread := 0
			for _, m := range msgs {
				if !m.IsRead {
					unread++
				}
			}
			fmt.Printf("  %s %s <-> %s: %d messages, %d unread\n",
				c.ID, c.Participants[0], c.Participants[1], len(msgs), unread)
		}
	}
}

// decode reports whether key was present and decodable.
func decode(values map[string][]byte, key string, dest any) bool {
	raw, ok := values[key]
	if !ok {
		fmt.Printf("%s: not present\n", key)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		fmt.Printf("%s: undecodable (%v)\n", key, err)
		return false
	}
	return true
}
