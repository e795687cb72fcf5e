// services/fixture_client.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"guildhall/utils"
)

// ErrFixtureNotFound is returned when the source has no file at the requested path.
var ErrFixtureNotFound = errors.New("fixture not found")

// FixtureSource fetches raw fixture bytes by path relative to the SLP root.
type FixtureSource interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
	// Resolve returns the fully qualified location of path; it is the cache key.
	Resolve(path string) string
}

// HTTPSource reads fixtures with plain GET requests against BaseURL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = utils.NewHTTPClient(0)
	}
	return &HTTPSource{BaseURL: baseURL, Client: client}
}

func (s *HTTPSource) Resolve(p string) string { return utils.JoinURL(s.BaseURL, p) }

func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	url := s.Resolve(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", url, err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("GET %s: %w", url, ErrFixtureNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("GET %s returned %d: %s", url, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// S3GetObjectAPI is the slice of the S3 client R2Source needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// R2Source reads fixtures from an R2/S3 bucket under Prefix.
type R2Source struct {
	Client S3GetObjectAPI
	Bucket string
	Prefix string
}

func NewR2Source(client S3GetObjectAPI, bucket, prefix string) *R2Source {
	return &R2Source{Client: client, Bucket: bucket, Prefix: prefix}
}

func (s *R2Source) key(p string) string { return path.Join(s.Prefix, p) }

func (s *R2Source) Resolve(p string) string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.key(p))
}

func (s *R2Source) Fetch(ctx context.Context, p string) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("get %s: %w", s.Resolve(p), ErrFixtureNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", s.Resolve(p), err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Resolve(p), err)
	}
	return body, nil
}

// DirSource reads fixtures from a local SLP directory, the same tree the server hosts under /SLP.
type DirSource struct {
	Root string
}

func NewDirSource(root string) *DirSource { return &DirSource{Root: root} }

func (s *DirSource) Resolve(p string) string {
	return filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+p)))
}

func (s *DirSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := s.Resolve(p)
	body, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", file, ErrFixtureNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return body, nil
}

// FixtureClient wraps a source with tracing and the URL-keyed asset cache.
// Only FetchCached/GetCachedJSON consult the cache; quest files always go to the source.
type FixtureClient struct {
	source FixtureSource
	cache  *utils.TTLCache[[]byte]
	logger *zap.Logger
}

func NewFixtureClient(source FixtureSource, cache *utils.TTLCache[[]byte], logger *zap.Logger) *FixtureClient {
	if cache == nil {
		cache = utils.NewTTLCache[[]byte](utils.DefaultCacheTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FixtureClient{source: source, cache: cache, logger: logger.Named("fixtures")}
}

// Resolve returns the location a fixture path is fetched from.
func (c *FixtureClient) Resolve(p string) string { return c.source.Resolve(p) }

func (c *FixtureClient) Fetch(ctx context.Context, p string) ([]byte, error) {
	ctx, span := otel.Tracer("guildhall/services").Start(ctx, "fixture.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()
	span.SetAttributes(attribute.String("fixture.path", p))

	body, err := c.source.Fetch(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("fixture.bytes", len(body)))
	return body, nil
}

func (c *FixtureClient) FetchCached(ctx context.Context, p string) ([]byte, error) {
	key := c.source.Resolve(p)
	if body, ok := c.cache.Get(key); ok {
		return body, nil
	}
	body, err := c.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, body)
	return body, nil
}

func (c *FixtureClient) GetJSON(ctx context.Context, p string, out any) error {
	body, err := c.Fetch(ctx, p)
	if err != nil {
		return err
	}
	return decodeFixture(p, body, out)
}

func (c *FixtureClient) GetCachedJSON(ctx context.Context, p string, out any) error {
	body, err := c.FetchCached(ctx, p)
	if err != nil {
		return err
	}
	return decodeFixture(p, body, out)
}

// PurgeCache drops expired asset cache entries.
func (c *FixtureClient) PurgeCache() int {
	removed := c.cache.Purge()
	if removed > 0 {
		c.logger.Debug("[CACHE] purged expired assets", zap.Int("removed", removed))
	}
	return removed
}

func decodeFixture(p string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}
