// Package poststore implements the file-backed post repository. It is the
// sole authority for translating between Post records and their on-disk
// markdown-with-front-matter representation: one file per slug under the
// content root, filename <slug>.md.
package poststore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/frontmatter"
	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/slug"
)

// Store is a post repository rooted at a content directory.
//
// Mutations to the same slug are serialized through per-slug advisory locks;
// mutations to different slugs run independently. There is no cross-slug
// transaction: the file system is the database.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store rooted at the given directory.
// The directory must already exist.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("poststore: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("poststore: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("poststore: root is not a directory: %s", abs)
	}
	return &Store{root: abs, locks: make(map[string]*sync.Mutex)}, nil
}

// Root returns the absolute content root path.
func (s *Store) Root() string {
	return s.root
}

// lockFor returns the advisory mutex guarding a slug.
func (s *Store) lockFor(sl string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[sl]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sl] = m
	}
	return m
}

// path maps a slug to its file under the content root. Slugs are validated
// against the canonical form so a slug can never escape the root.
func (s *Store) path(sl string) (string, error) {
	if sl == "" || slug.Make(sl) != sl {
		return "", fmt.Errorf("poststore: invalid slug %q: %w", sl, apperr.ErrNotFound)
	}
	return filepath.Join(s.root, sl+".md"), nil
}

// ListAll returns every stored post ordered by most recently updated first.
// An unreadable content root is logged and yields an empty list: read
// failures on listing are non-fatal to callers.
func (s *Store) ListAll() []models.Post {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		slog.Error("poststore: read content root failed",
			slog.String("root", s.root),
			slog.String("error", err.Error()))
		return []models.Post{}
	}

	posts := make([]models.Post, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		sl := strings.TrimSuffix(e.Name(), ".md")
		post, err := s.read(sl)
		if err != nil {
			slog.Warn("poststore: skipping unreadable post",
				slog.String("file", e.Name()),
				slog.String("error", err.Error()))
			continue
		}
		posts = append(posts, *post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].UpdatedAt.After(posts[j].UpdatedAt)
	})
	return posts
}

// ListPublished returns all posts with status published, most recently
// updated first.
func (s *Store) ListPublished() []models.Post {
	all := s.ListAll()
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		if p.Published() {
			out = append(out, p)
		}
	}
	return out
}

// GetBySlug returns the post for an exact slug match.
func (s *Store) GetBySlug(sl string) (*models.Post, error) {
	return s.read(sl)
}

// Create derives the slug from the input title, writes a new post file, and
// reads it back as a defensive integrity check. A slug collision is rejected
// with apperr.ErrAlreadyExists rather than silently overwriting.
func (s *Store) Create(in models.PostInput) (*models.Post, error) {
	sl := slug.Make(in.Title)
	if sl == "" {
		return nil, fmt.Errorf("poststore: title %q yields an empty slug", in.Title)
	}
	path, err := s.path(sl)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(sl)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("poststore: post %q: %w", sl, apperr.ErrAlreadyExists)
	}

	status := in.Status
	if !status.Valid() {
		status = models.StatusDraft
	}
	author := in.AuthorID
	if author == "" {
		author = "unknown"
	}
	meta := frontmatter.Meta{
		Title:    in.Title,
		Date:     time.Now().UTC().Truncate(time.Second),
		Draft:    status != models.StatusPublished,
		Slug:     sl,
		Excerpt:  in.Excerpt,
		Category: in.Category,
		Tags:     in.Tags,
		Author:   author,
	}
	if err := s.write(path, meta, in.Content); err != nil {
		return nil, err
	}

	post, err := s.read(sl)
	if err != nil {
		return nil, fmt.Errorf("poststore: read back %q after create: %w", sl, err)
	}
	return post, nil
}

// Update merges the patch over the stored post and rewrites the same file.
// The slug is immutable even if the title changes, and the original
// publication date is preserved.
func (s *Store) Update(sl string, patch models.PostPatch) (*models.Post, error) {
	path, err := s.path(sl)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(sl)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("poststore: post %q: %w", sl, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("poststore: read %q: %w", sl, err)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("poststore: parse %q: %w", sl, err)
	}

	if patch.Title != nil {
		meta.Title = *patch.Title
	}
	if patch.Content != nil {
		body = *patch.Content
	}
	if patch.Excerpt != nil {
		meta.Excerpt = *patch.Excerpt
	}
	if patch.Category != nil {
		meta.Category = *patch.Category
	}
	if patch.Tags != nil {
		meta.Tags = patch.Tags
	}
	if patch.Status != nil {
		meta.Draft = *patch.Status != models.StatusPublished
	}
	if patch.AuthorID != nil {
		meta.Author = *patch.AuthorID
	}
	meta.Slug = sl

	if err := s.write(path, meta, body); err != nil {
		return nil, err
	}

	post, err := s.read(sl)
	if err != nil {
		return nil, fmt.Errorf("poststore: read back %q after update: %w", sl, err)
	}
	return post, nil
}

// Delete removes the post file. A missing file is surfaced as
// apperr.ErrNotFound, not silently ignored.
func (s *Store) Delete(sl string) error {
	path, err := s.path(sl)
	if err != nil {
		return err
	}

	lock := s.lockFor(sl)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("poststore: post %q: %w", sl, apperr.ErrNotFound)
		}
		return fmt.Errorf("poststore: delete %q: %w", sl, err)
	}
	return nil
}

// Search returns every post whose title, content, excerpt, category, or any
// tag contains the query, case-insensitively. Ordering follows ListAll.
func (s *Store) Search(query string) []models.Post {
	q := strings.ToLower(query)
	var out []models.Post
	for _, p := range s.ListAll() {
		if matches(&p, q) {
			out = append(out, p)
		}
	}
	if out == nil {
		out = []models.Post{}
	}
	return out
}

func matches(p *models.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Content), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q) ||
		strings.Contains(strings.ToLower(p.Category), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// read loads and parses a single post file.
func (s *Store) read(sl string) (*models.Post, error) {
	path, err := s.path(sl)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("poststore: post %q: %w", sl, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("poststore: read %q: %w", sl, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("poststore: stat %q: %w", sl, err)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("poststore: parse %q: %w", sl, err)
	}

	status := models.StatusDraft
	if !meta.Draft {
		status = models.StatusPublished
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	author := meta.Author
	if author == "" {
		author = "unknown"
	}
	created := meta.Date
	if created.IsZero() {
		created = info.ModTime()
	}
	var publishedAt *time.Time
	if !meta.Date.IsZero() {
		d := meta.Date
		publishedAt = &d
	}

	return &models.Post{
		Title:       meta.Title,
		Slug:        sl,
		Content:     body,
		Excerpt:     meta.Excerpt,
		Category:    meta.Category,
		Tags:        tags,
		Status:      status,
		AuthorID:    author,
		PublishedAt: publishedAt,
		CreatedAt:   created,
		UpdatedAt:   info.ModTime(),
	}, nil
}

// write atomically replaces a post file: tmp file, fsync, rename.
func (s *Store) write(path string, meta frontmatter.Meta, body string) error {
	data, err := frontmatter.Encode(meta, body)
	if err != nil {
		return fmt.Errorf("poststore: encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".skald-tmp-*")
	if err != nil {
		return fmt.Errorf("poststore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("poststore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("poststore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("poststore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("poststore: rename: %w", err)
	}
	success = true
	return nil
}
