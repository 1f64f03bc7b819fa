package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"reelmatch/internal/logging"
	"reelmatch/internal/recommend"
	"reelmatch/internal/services"
)

const (
	ToolRecommend    = "recommend_movies"
	ToolSearchTitles = "search_titles"

	defaultSearchLimit = 20
)

// RecommendInput is the recommend_movies argument object.
type RecommendInput struct {
	Title   string `json:"title" jsonschema:"movie title or part of one to base recommendations on"`
	K       int    `json:"k,omitempty" jsonschema:"number of recommendations to return (default 5)"`
	Posters bool   `json:"posters,omitempty" jsonschema:"include poster image URLs"`
}

// RecommendOutput is the structured recommend_movies result.
type RecommendOutput struct {
	Title string           `json:"title" jsonschema:"catalog title the query matched"`
	Items []recommend.Item `json:"items" jsonschema:"recommendations ordered by similarity, best first"`
}

// SearchInput is the search_titles argument object.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to look for in catalog titles, case-insensitive"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of titles to return (default 20)"`
}

// SearchOutput is the structured search_titles result.
type SearchOutput struct {
	Titles []string `json:"titles" jsonschema:"matching catalog titles"`
}

// Server wraps an MCP server bound to a recommend.Service.
type Server struct {
	svc    *recommend.Service
	logger *slog.Logger
	server *mcp.Server
}

// New registers the tools on a fresh MCP server.
func New(svc *recommend.Service, version string, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("mcpserver: service required")
	}
	s := &Server{
		svc:    svc,
		logger: logging.NewComponentLogger(logger, "mcp"),
	}
	s.server = mcp.NewServer(&mcp.Implementation{Name: "reelmatch", Version: version}, nil)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolRecommend,
		Description: "Recommend movies similar to the given title from the local catalog.",
	}, s.recommendMovies)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSearchTitles,
		Description: "List catalog titles containing the query, in the order title matching considers them.",
	}, s.searchTitles)
	return s, nil
}

// MCP exposes the underlying server, for in-process transports.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", logging.String(logging.FieldEventType, "mcp_start"))
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) recommendMovies(ctx context.Context, _ *mcp.CallToolRequest, in RecommendInput) (*mcp.CallToolResult, RecommendOutput, error) {
	ctx = services.WithOperation(ctx, "mcp_recommend")
	result, err := s.svc.Execute(ctx, recommend.Request{Query: in.Title, K: in.K, SkipPosters: !in.Posters})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyInput):
			return nil, RecommendOutput{}, errors.New("please enter a movie name")
		case errors.Is(err, services.ErrNotFound):
			return nil, RecommendOutput{}, fmt.Errorf("movie not found: %q", in.Title)
		}
		return nil, RecommendOutput{}, err
	}
	return nil, RecommendOutput{Title: result.Title, Items: result.Items}, nil
}

func (s *Server) searchTitles(_ context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	titles := s.svc.Index().Search(in.Query, limit)
	if titles == nil {
		titles = []string{}
	}
	return nil, SearchOutput{Titles: titles}, nil
}
