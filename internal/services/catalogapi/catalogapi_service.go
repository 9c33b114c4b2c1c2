package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/rim"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/editor"
)

// HTTP client untuk catalog API — implementasi editor.API yang dipakai sesi
// editor. Error server diteruskan apa adanya (message ditampilkan verbatim
// di UI).

type CatalogService struct {
	Client  *http.Client
	BaseURL string
	Token   string
}

func NewCatalogService() *CatalogService {
	baseURL := os.Getenv("CATALOG_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	return &CatalogService{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
		Token:   os.Getenv("CATALOG_API_TOKEN"),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *CatalogService) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("catalog api: parse response (%d): %v", resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("http %d", resp.StatusCode)
		}
		// Pesan server verbatim.
		return fmt.Errorf("%s", msg)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// decodeRecord maps a raw product object into an editor.ProductRecord:
// id/parent_id/site_code jadi identitas, sisanya field trackable.
func decodeRecord(raw map[string]interface{}) *editor.ProductRecord {
	rec := &editor.ProductRecord{Fields: editor.FormState{}}
	hasMedia := false
	for k, v := range raw {
		switch k {
		case "id":
			rec.ID = rim.ToID(v)
		case "parent_id":
			rec.ParentID = rim.ToID(v)
		case "site_code":
			rec.SiteCode, _ = v.(string)
		case "media":
			// detail endpoint kirim objek media, editor cuma butuh ID-nya
			var ids []int64
			if list, ok := v.([]interface{}); ok {
				for _, m := range list {
					if obj, ok := m.(map[string]interface{}); ok {
						ids = append(ids, rim.ToID(obj["id"]))
					}
				}
			}
			rec.Fields["media_ids"] = rim.FilterIDs(ids)
			hasMedia = true
		case "media_ids":
			if !hasMedia {
				rec.Fields["media_ids"] = rim.ToIDList(v)
			}
		case "category_ids":
			if s, ok := v.(string); ok {
				rec.Fields[k] = rim.ParseCategoryIDs(s)
			} else {
				rec.Fields[k] = v
			}
		case "created_at", "updated_at":
			// bukan field trackable
		default:
			rec.Fields[k] = v
		}
	}
	return rec
}

func (s *CatalogService) FetchProduct(ctx context.Context, id int64) (*editor.ProductRecord, error) {
	var raw map[string]interface{}
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &raw); err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

func (s *CatalogService) FetchLinks(ctx context.Context, rootID int64) ([]editor.ProductLink, error) {
	var links []editor.ProductLink
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/product-links/%d", rootID), nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, payload map[string]interface{}) (*editor.ProductRecord, error) {
	var raw map[string]interface{}
	if err := s.do(ctx, http.MethodPost, "/products", payload, &raw); err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, payload map[string]interface{}) (*editor.ProductRecord, error) {
	var raw map[string]interface{}
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), payload, &raw); err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

func (s *CatalogService) CreateLink(ctx context.Context, link editor.ProductLink) error {
	return s.do(ctx, http.MethodPost, "/product-links", link, nil)
}
