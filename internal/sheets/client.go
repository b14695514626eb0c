// Package sheets mirrors a guild's inventory to its linked external
// spreadsheet.  The mirror is a read-only convenience view: every push
// replaces the full tab contents, so repeated pushes for the same state
// are idempotent and a lost push is healed by the next one.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iliyamo/guild-inventory/internal/model"
)

const (
	timestampLayout = "2006-01-02 15:04"
	dateLayout      = "2006-01-02"
)

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	itemHeaders = []string{
		"Item ID", "Item Name", "Total Qty", "Available",
		"Checked Out", "Location", "Subteam", "Point of Contact",
		"Purchase Order", "Description", "Created At",
	}
	checkoutHeaders = []string{
		"Checkout ID", "Item Name", "User", "Quantity",
		"Checked Out", "Expected Return", "Days Out", "Notes",
	}
)

// Tab is one worksheet in the mirror: a header row plus data rows.
type Tab struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Snapshot is the complete mirror state for one guild, pushed as a
// single document so the receiver can swap all tabs atomically.
// OverdueRows lists 1-based indexes into the checkouts tab whose
// expected return date has passed, for highlighting.
type Snapshot struct {
	GuildID     uint64            `json:"guild_id"`
	SheetID     string            `json:"sheet_id"`
	Items       Tab               `json:"items"`
	Checkouts   Tab               `json:"active_checkouts"`
	OverdueRows []int             `json:"overdue_rows,omitempty"`
	Stats       map[string]string `json:"stats"`
	SyncedAt    string            `json:"synced_at"`
}

// BuildSnapshot renders the guild's current items, open loans and
// aggregate stats into the mirror's tab layout.
func BuildSnapshot(guildID uint64, sheetID string, items []model.Item, checkouts []model.Checkout, stats model.InventoryStats) Snapshot {
	now := time.Now().UTC()

	itemNames := make(map[uint64]string, len(items))
	itemRows := make([][]string, 0, len(items))
	for _, it := range items {
		itemNames[it.ID] = it.ItemName
		itemRows = append(itemRows, []string{
			strconv.FormatUint(it.ID, 10),
			it.ItemName,
			strconv.Itoa(it.QuantityTotal),
			strconv.Itoa(it.QuantityAvailable),
			strconv.Itoa(it.QuantityCheckedOut()),
			it.Location,
			string(it.Subteam),
			fmt.Sprintf("User ID: %d", it.PointOfContact),
			it.PurchaseOrder,
			strDeref(it.Description),
			it.CreatedAt.UTC().Format(timestampLayout),
		})
	}

	checkoutRows := make([][]string, 0, len(checkouts))
	var overdue []int
	for i, c := range checkouts {
		name, ok := itemNames[c.ItemID]
		if !ok {
			name = "Unknown Item"
		}
		expected := "N/A"
		if c.ExpectedReturnDate != nil {
			expected = c.ExpectedReturnDate.UTC().Format(dateLayout)
		}
		checkoutRows = append(checkoutRows, []string{
			strconv.FormatUint(c.ID, 10),
			name,
			fmt.Sprintf("User ID: %d", c.UserID),
			strconv.Itoa(c.Quantity),
			c.CheckedOutAt.UTC().Format(timestampLayout),
			expected,
			strconv.Itoa(c.DaysCheckedOut()),
			strDeref(c.Notes),
		})
		if c.IsOverdue() {
			overdue = append(overdue, i+1)
		}
	}

	return Snapshot{
		GuildID:     guildID,
		SheetID:     sheetID,
		Items:       Tab{Headers: itemHeaders, Rows: itemRows},
		Checkouts:   Tab{Headers: checkoutHeaders, Rows: checkoutRows},
		OverdueRows: overdue,
		Stats: map[string]string{
			"total_items":          strconv.Itoa(stats.TotalItems),
			"total_quantity":       strconv.Itoa(stats.TotalQuantity),
			"checked_out_quantity": strconv.Itoa(stats.CheckedOutQuantity),
			"active_checkouts":     strconv.Itoa(stats.ActiveCheckouts),
			"utilization_rate":     fmt.Sprintf("%.1f%%", stats.UtilizationRate()),
			"last_updated":         now.Format("2006-01-02 15:04:05"),
		},
		SyncedAt: now.Format(time.RFC3339),
	}
}

// Client pushes snapshots to the mirror webhook.
type Client struct {
	url string
	hc  *http.Client
}

// NewClient returns a mirror client, or nil when no webhook URL is
// configured (mirroring disabled).
func NewClient(webhookURL string) *Client {
	if webhookURL == "" {
		return nil
	}
	return &Client{
		url: webhookURL,
		hc:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Push POSTs one snapshot.  Any non-2xx response is an error; the
// caller decides whether to retry (the sync consumer just logs it and
// waits for the next trigger).
func (c *Client) Push(ctx context.Context, snap Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("post snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mirror webhook returned %d", resp.StatusCode)
	}
	return nil
}
