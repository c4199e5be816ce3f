package youtube

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/tree"
)

// SortOrder selects an entry of the comment sort menu by index.
type SortOrder int

const (
	SortPopular SortOrder = 0
	SortRecent  SortOrder = 1
)

func (s SortOrder) String() string {
	switch s {
	case SortPopular:
		return "popular"
	case SortRecent:
		return "recent"
	}
	return strconv.Itoa(int(s))
}

// ParseSortOrder accepts "popular"/"top"/"0" and "recent"/"newest"/"1".
// Empty input selects SortRecent.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recent", "newest", "new", "1":
		return SortRecent, nil
	case "popular", "top", "0":
		return SortPopular, nil
	}
	return 0, fmt.Errorf("unknown sort order %q (want recent or popular)", s)
}

var (
	// ErrExtraction means the watch page did not carry ytcfg or ytInitialData.
	ErrExtraction = errors.New("youtube: embedded page data not found")
	// ErrSortSelection means no sort menu was found or the index is out of range.
	ErrSortSelection = errors.New("youtube: failed to set sorting")
	// ErrNoVideo is returned for an empty video id or URL.
	ErrNoVideo = errors.New("youtube: video id or url is required")
)

// ServerError carries an externalErrorMessage reported inside a response.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "youtube: server returned an error: " + e.Message
}

// Comment is one assembled comment or reply. JSON names follow the
// downloader's historical output.
type Comment struct {
	CID        string     `json:"cid"`
	Text       string     `json:"text"`
	Time       string     `json:"time"`
	Author     string     `json:"author"`
	Channel    string     `json:"channel"`
	Votes      string     `json:"votes"`
	Replies    string     `json:"replies"`
	Photo      string     `json:"photo"`
	Heart      bool       `json:"heart"`
	Reply      bool       `json:"reply"`
	TimeParsed *time.Time `json:"time_parsed,omitempty"`
	Paid       string     `json:"paid,omitempty"`
}

// ParentID returns the top-level comment id for a reply, or the id itself.
func (c Comment) ParentID() string {
	if i := strings.IndexByte(c.CID, replySeparator); i >= 0 {
		return c.CID[:i]
	}
	return c.CID
}

// PublicComment is the narrow schema handed to downstream consumers.
type PublicComment struct {
	CID     string `json:"cid"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Time    string `json:"time"`
	Date    string `json:"data"`
	Replies string `json:"respostas"`
}

// Continuation is a pagination token: the endpoint path to POST to and the
// opaque cursor. The request context comes from the session's RuntimeConfig.
type Continuation struct {
	APIURL string
	Token  string
}

// parseContinuation reads an endpoint node
// ({commandMetadata.webCommandMetadata.apiUrl, continuationCommand.token}).
func parseContinuation(ep *tree.Value) (Continuation, bool) {
	c := Continuation{
		APIURL: ep.Path("commandMetadata", "webCommandMetadata", "apiUrl").Str(),
		Token:  ep.Path("continuationCommand", "token").Str(),
	}
	return c, c.APIURL != "" && c.Token != ""
}

// RuntimeConfig wraps the ytcfg object embedded in the watch page.
type RuntimeConfig struct {
	root *tree.Value
}

// APIKey is INNERTUBE_API_KEY.
func (c *RuntimeConfig) APIKey() string { return c.root.Path("INNERTUBE_API_KEY").Str() }

// Context is the INNERTUBE_CONTEXT blob sent with every continuation call.
func (c *RuntimeConfig) Context() *tree.Value { return c.root.Path("INNERTUBE_CONTEXT") }

// Language is INNERTUBE_CONTEXT.client.hl.
func (c *RuntimeConfig) Language() string {
	return c.root.Path("INNERTUBE_CONTEXT", "client", "hl").Str()
}

// SetLanguage overrides INNERTUBE_CONTEXT.client.hl.
func (c *RuntimeConfig) SetLanguage(hl string) {
	if client := c.root.Path("INNERTUBE_CONTEXT", "client"); client != nil {
		client.Set("hl", tree.String(hl))
	}
}

// Session is what Bootstrap extracts from a watch page.
type Session struct {
	URL     string
	Config  *RuntimeConfig
	Initial *tree.Value
}

// Batch is one continuation response reduced to what the assembler joins.
type Batch struct {
	Entities    []*tree.Value          // commentEntityPayload, oldest first
	Toolbar     map[string]*tree.Value // toolbarStateKey → engagementToolbarStateEntityPayload
	Payments    map[string]string      // surface key → paid chip text
	SurfaceKeys map[string]string      // surface key → comment id
}
