// Package gitlog loads commit history as list items.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const DefaultLimit = 500

type Commit struct {
	Hash    string
	Author  string
	Email   string
	When    time.Time
	Subject string
	Body    string
}

// Key returns the commit hash, which is stable across reloads.
func (c Commit) Key() string {
	return c.Hash
}

func (c Commit) Short() string {
	if len(c.Hash) < 8 {
		return c.Hash
	}
	return c.Hash[:8]
}

func open(path string) (*git.Repository, error) {
	if path == "" {
		path = "."
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return repo, nil
}

// Load returns up to limit commits reachable from HEAD, newest first. A
// repository without commits yields an empty slice.
func Load(ctx context.Context, path string, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	repo, err := open(path)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		slog.Debug("Repository has no commits yet", "path", path)
		return []Commit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	commits := make([]Commit, 0, min(limit, 64))
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(commits) >= limit {
			return storer.ErrStop
		}
		commits = append(commits, fromObject(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}
	return commits, nil
}

func fromObject(c *object.Commit) Commit {
	subject, body, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return Commit{
		Hash:    c.Hash.String(),
		Author:  c.Author.Name,
		Email:   c.Author.Email,
		When:    c.Author.When,
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
}

// Patch returns the unified diff a commit introduced over its first parent.
// Root commits are diffed against the empty tree.
func Patch(ctx context.Context, path, hash string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", err
	}
	c, err := repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return "", fmt.Errorf("failed to find commit %s: %w", hash, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return "", fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return "", fmt.Errorf("failed to read parent of %s: %w", hash, err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return "", fmt.Errorf("failed to read parent tree of %s: %w", hash, err)
		}
	}

	patch, err := parentTree.PatchContext(ctx, tree)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", hash, err)
	}
	return patch.String(), nil
}
