package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storypals/internal/chatclient"
	"storypals/internal/domain"
	"storypals/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		characterKey string
		anonymous    bool
		interrupt    bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a chat with a character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			characters, err := a.client.Characters(ctx)
			if err != nil {
				return describe(err)
			}
			character, ok := pickCharacter(characters, characterKey)
			if !ok {
				return fmt.Errorf("unknown character %q (try: %s)", characterKey, characterIDs(characters))
			}

			userID := ""
			if !anonymous {
				user, err := a.client.Me(ctx)
				if err != nil {
					return describe(err)
				}
				userID = user.ID
			}

			watchCtx, stopWatch := context.WithCancel(ctx)
			defer stopWatch()
			go func() {
				if err := a.session.Watch(watchCtx, nil); err != nil {
					a.logger.Warn("session watch stopped", zap.Error(err))
				}
			}()

			opts := []chatclient.ControllerOption{chatclient.WithControllerLogger(a.logger)}
			if interrupt {
				opts = append(opts, chatclient.WithSupersede())
			}
			ctrl := chatclient.NewController(a.client, character, userID, opts...)
			return tui.Run(ctrl, tui.WithMarkdownStyle("dark"))
		},
	}
	cmd.Flags().StringVarP(&characterKey, "character", "c", "luna", "character id or name")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "chat without loading or saving history")
	cmd.Flags().BoolVar(&interrupt, "interrupt", false, "a new message cancels the one still waiting for a reply")
	return cmd
}

func pickCharacter(characters []domain.Character, key string) (domain.Character, bool) {
	key = strings.TrimSpace(key)
	for _, c := range characters {
		if strings.EqualFold(c.ID, key) || strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return domain.Character{}, false
}

func characterIDs(characters []domain.Character) string {
	ids := make([]string, 0, len(characters))
	for _, c := range characters {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ", ")
}
