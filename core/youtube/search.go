package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearchItem is one row of a search page.
type SearchItem struct {
	VideoID      string
	Title        string
	ChannelTitle string
	PublishedAt  time.Time
	Thumbnail    *string
}

// SearchPage is one page of search results plus the cursor to the next.
type SearchPage struct {
	Items         []SearchItem
	NextPageToken string
}

// VideoDetail is the duration-bearing metadata record for one video.
type VideoDetail struct {
	ID           string    `json:"id"`
	Duration     string    `json:"duration"` // ISO-8601, e.g. "PT1H2M30S"
	Title        string    `json:"title"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt"`
	Thumbnail    *string   `json:"thumbnail"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

type snippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   struct {
		High    thumb `json:"high"`
		Medium  thumb `json:"medium"`
		Default thumb `json:"default"`
	} `json:"thumbnails"`
}

type thumb struct {
	URL string `json:"url"`
}

func (s snippet) bestThumbnail() *string {
	for _, t := range []thumb{s.Thumbnails.High, s.Thumbnails.Medium, s.Thumbnails.Default} {
		if t.URL != "" {
			u := t.URL
			return &u
		}
	}
	return nil
}

func (s snippet) publishedTime() time.Time {
	t, err := time.Parse(time.RFC3339, s.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Search issues one page of a video search. pageToken may be empty for
// the first page. The request is aborted when ctx is cancelled.
func (c *Client) Search(ctx context.Context, query, pageToken string, pageSize int) (*SearchPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	page := &SearchPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		page.Items = append(page.Items, SearchItem{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.publishedTime(),
			Thumbnail:    item.Snippet.bestThumbnail(),
		})
	}
	return page, nil
}

// VideoDetails batch-fetches duration and metadata for the given ids in a
// single call.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]VideoDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("part", "contentDetails,snippet")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.apiKey)

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}

	details := make([]VideoDetail, 0, len(resp.Items))
	for _, item := range resp.Items {
		details = append(details, VideoDetail{
			ID:           item.ID,
			Duration:     item.ContentDetails.Duration,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.publishedTime(),
			Thumbnail:    item.Snippet.bestThumbnail(),
		})
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if decErr := json.NewDecoder(resp.Body).Decode(&errResp); decErr == nil && errResp.Error.Message != "" {
			return fmt.Errorf("youtube API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("youtube API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
