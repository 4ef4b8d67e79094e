package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/utils"
	"github.com/aristath/stockscout/pkg/embedded"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ParseSnapshot decodes a JSON array of stocks.
// Symbols are normalized and rows without a symbol are dropped.
func ParseSnapshot(data []byte) ([]domain.Stock, error) {
	var rows []domain.Stock
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
	}

	stocks := make([]domain.Stock, 0, len(rows))
	for _, s := range rows {
		s.Symbol = utils.NormalizeSymbol(s.Symbol)
		if s.Symbol == "" {
			continue
		}
		s.Name = strings.TrimSpace(s.Name)
		s.Industry = strings.TrimSpace(s.Industry)
		s.Sector = strings.TrimSpace(s.Sector)
		if s.MarketCap < 0 {
			s.MarketCap = 0
		}
		stocks = append(stocks, s)
	}
	return stocks, nil
}

// EmbeddedSource reads a snapshot compiled into the binary.
type EmbeddedSource struct {
	path string
}

// NewEmbeddedSource returns the bundled S&P 500 snapshot source.
func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{path: embedded.CatalogPath}
}

// NewMockSource returns the small fallback catalog.
func NewMockSource() *EmbeddedSource {
	return &EmbeddedSource{path: embedded.MockCatalogPath}
}

func (s *EmbeddedSource) Name() string { return "embedded:" + s.path }

func (s *EmbeddedSource) Load(_ context.Context) ([]domain.Stock, error) {
	data, err := embedded.Files.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog %s: %w", s.path, err)
	}
	return ParseSnapshot(data)
}

// FileSource reads a snapshot from disk on every load.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Load(_ context.Context) ([]domain.Stock, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseSnapshot(data)
}

// Downloader is the subset of manager.Downloader used by S3Source
type Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Source fetches a snapshot object from an S3-compatible bucket.
type S3Source struct {
	downloader Downloader
	bucket     string
	key        string
}

func NewS3Source(downloader Downloader, bucket, key string) *S3Source {
	return &S3Source{downloader: downloader, bucket: bucket, key: key}
}

func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Source) Load(ctx context.Context) ([]domain.Stock, error) {
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download catalog from %s: %w", s.Name(), err)
	}
	return ParseSnapshot(buf.Bytes())
}

// StockLister returns live constituents (implemented by the listing client)
type StockLister interface {
	Stocks(ctx context.Context) ([]domain.Stock, error)
}

// ListingSource loads the live constituents table.
type ListingSource struct {
	lister StockLister
}

func NewListingSource(lister StockLister) *ListingSource {
	return &ListingSource{lister: lister}
}

func (s *ListingSource) Name() string { return "listing" }

func (s *ListingSource) Load(ctx context.Context) ([]domain.Stock, error) {
	stocks, err := s.lister.Stocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	for i := range stocks {
		stocks[i].Symbol = utils.NormalizeSymbol(stocks[i].Symbol)
	}
	return stocks, nil
}
