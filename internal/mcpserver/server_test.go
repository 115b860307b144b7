package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/poststore"
	"github.com/halvard/skald/internal/testutil"
)

func testServer(t *testing.T) (*Server, *poststore.Store) {
	t.Helper()
	_, posts := testutil.ContentStore(t)
	return New(posts), posts
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "get_post":
		result, err = srv.getPost(ctx, req)
	case "search_posts":
		result, err = srv.searchPosts(ctx, req)
	case "create_post":
		result, err = srv.createPost(ctx, req)
	case "get_post_contract":
		result, err = srv.getPostContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndGetPost(t *testing.T) {
	srv, posts := testServer(t)

	res := callTool(t, srv, "create_post", map[string]interface{}{
		"title":   "Hello World",
		"content": "body",
	})
	if res.IsError {
		t.Fatalf("create_post error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "hello-world") {
		t.Errorf("result = %q", resultText(res))
	}

	// MCP-created posts are always drafts.
	post, err := posts.GetBySlug("hello-world")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if post.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", post.Status)
	}
	if post.AuthorID != "mcp" {
		t.Errorf("author = %q", post.AuthorID)
	}

	res = callTool(t, srv, "get_post", map[string]interface{}{"slug": "hello-world"})
	if res.IsError {
		t.Fatalf("get_post error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "Hello World") {
		t.Errorf("get_post = %q", resultText(res))
	}
}

func TestCreateDuplicateReported(t *testing.T) {
	srv, _ := testServer(t)
	args := map[string]interface{}{"title": "Same", "content": "x"}
	if res := callTool(t, srv, "create_post", args); res.IsError {
		t.Fatalf("first create error: %s", resultText(res))
	}
	res := callTool(t, srv, "create_post", args)
	if !res.IsError {
		t.Error("duplicate create should be an error result")
	}
}

func TestGetMissingPost(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "get_post", map[string]interface{}{"slug": "ghost"})
	if !res.IsError {
		t.Error("expected error result for missing slug")
	}
}

func TestSearchPosts(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_post", map[string]interface{}{"title": "Hello World", "content": "greetings"})

	res := callTool(t, srv, "search_posts", map[string]interface{}{"query": "greet"})
	if res.IsError {
		t.Fatalf("search error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "hello-world") {
		t.Errorf("search = %q", resultText(res))
	}

	res = callTool(t, srv, "search_posts", map[string]interface{}{"query": "nonexistent"})
	if strings.Contains(resultText(res), "hello-world") {
		t.Errorf("unexpected hit: %q", resultText(res))
	}
}

func TestListPosts(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_post", map[string]interface{}{"title": "One", "content": "x"})
	callTool(t, srv, "create_post", map[string]interface{}{"title": "Two", "content": "x"})

	res := callTool(t, srv, "list_posts", nil)
	text := resultText(res)
	if !strings.Contains(text, "one") || !strings.Contains(text, "two") {
		t.Errorf("list = %q", text)
	}
}

func TestPostContract(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "get_post_contract", nil)
	if !strings.Contains(resultText(res), "front matter") {
		t.Errorf("contract = %q", resultText(res))
	}
}
