package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/env"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
	"github.com/abdul-hamid-achik/hitmatch/packages/db"
	"github.com/abdul-hamid-achik/hitmatch/packages/jsonutil"
)

// suite is the per-file state shared by the cases of one run.
type suite struct {
	file     *parser.File
	baseDir  string
	resolver *env.Resolver
}

func (r *Runner) resolveSubject(ctx context.Context, s *suite, subj *parser.Subject) (any, error) {
	if subj == nil {
		return nil, nil
	}

	switch subj.Kind {
	case parser.SubjectFile:
		return r.fileSubject(s, subj)
	case parser.SubjectQuery:
		return r.querySubject(ctx, s, subj)
	default:
		return s.resolver.ResolveValue(subj.Value), nil
	}
}

// fileSubject reads a file relative to the suite. With a path, the value at
// that path is returned: objects and arrays as JSON text, scalars decoded.
func (r *Runner) fileSubject(s *suite, subj *parser.Subject) (any, error) {
	path := s.resolver.Resolve(subj.File)
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading subject file: %w", err)
	}
	if subj.Path == "" {
		return string(content), nil
	}

	jsonPath := s.resolver.Resolve(subj.Path)
	raw, ok := jsonutil.LookupRaw(string(content), jsonPath)
	if !ok {
		return nil, fmt.Errorf("path %q not found in %s", jsonPath, subj.File)
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw, nil
	}
	return jsonutil.Decode(raw)
}

func (r *Runner) querySubject(ctx context.Context, s *suite, subj *parser.Subject) (any, error) {
	conn := subj.DB
	if conn == "" {
		conn = s.file.DB
	}
	if conn == "" {
		conn = r.config.DB
	}
	if conn == "" {
		return nil, fmt.Errorf("no database connection for query subject (set db on the subject, the suite or --db)")
	}
	conn = s.resolver.Resolve(conn)

	client, err := r.client(ctx, conn, s.baseDir)
	if err != nil {
		return nil, err
	}
	return client.QueryValue(ctx, s.resolver.Resolve(subj.Query), subj.Column)
}

// client returns a cached connection. Relative sqlite paths are taken
// relative to the suite directory.
func (r *Runner) client(ctx context.Context, conn, baseDir string) (*db.Client, error) {
	conn = anchorSQLitePath(conn, baseDir)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[conn]; ok {
		return c, nil
	}
	c, err := db.NewClient(ctx, conn)
	if err != nil {
		return nil, err
	}
	c.SetQueryTimeout(r.config.QueryTimeout)
	r.clients[conn] = c
	return c, nil
}

func anchorSQLitePath(conn, baseDir string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if !strings.HasPrefix(conn, prefix) {
			continue
		}
		path := strings.TrimPrefix(conn, prefix)
		if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") || filepath.IsAbs(path) {
			return conn
		}
		return prefix + filepath.Join(baseDir, path)
	}
	return conn
}
