package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finitefield.org/hanko-blog/internal/blog"
)

func newPostsCmd() *cobra.Command {
	var (
		server   string
		category string
	)
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts from a running server the way the category filter does",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := blog.NewAPIClient(server)
			if err != nil {
				return err
			}
			state := blog.NewFilter(client, nil).Select(cmd.Context(), category)
			if state.Error != "" {
				return errors.New(state.Error)
			}
			out := cmd.OutOrStdout()
			if len(state.Posts) == 0 {
				fmt.Fprintln(out, "No posts found.")
				return nil
			}
			for _, post := range state.Posts {
				fmt.Fprintf(out, "%s\t%s\n", post.Slug, blog.PlainText(post.Title))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "base URL of a running blog server")
	cmd.Flags().StringVar(&category, "category", "all", `category slug, or "all"`)
	return cmd
}
