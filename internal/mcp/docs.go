package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `synchrokit keeps descriptors of objects: a numeric identifier, a name,
the time the object was last used, and how many times it was used.

- register_descriptor once per object identifier; get_descriptor / list_descriptors to read.
- record_use every time the object is used: it bumps used_count and stamps last_used_date.
- update_descriptor to overwrite fields directly; delete_descriptor to forget an object.
- list_descriptors with order_by=last_used or used_count finds the hottest objects.
- get_recent_activity shows what happened, newest first.

Timestamps are RFC 3339.

Docs:
- synchrokit://docs/index
- synchrokit://docs/descriptors`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "synchrokit://docs/index",
		Name:        "docs_index",
		Title:       "synchrokit docs index",
		Description: "Entry point: what the tools do and which doc to read next.",
		Content: `# synchrokit: Docs Index

## Tools

| Tool | Use it to |
|---|---|
| register_descriptor | add an object the first time you see it |
| get_descriptor | read one descriptor by identifier |
| list_descriptors | browse, optionally ordered by last_used or used_count |
| update_descriptor | overwrite name, last_used_date or used_count |
| record_use | count one use and stamp the current time |
| delete_descriptor | forget an object |
| get_recent_activity | see registrations, updates, uses and deletions |

## Read next

- synchrokit://docs/descriptors for field meanings and edge cases.
`,
	},
	{
		URI:         "synchrokit://docs/descriptors",
		Name:        "docs_descriptors",
		Title:       "Descriptor fields and edge cases",
		Description: "What each descriptor field means and how missing values are represented.",
		Content: `# Descriptors

A descriptor has four fields:

- identifier: integer, unique per tenant. Negative and zero are allowed.
- name: free text. Empty is allowed.
- last_used_date: RFC 3339 time of the last use. Omitted when the object was never used.
- used_count: integer. It is not checked, so negative values are stored as given.

## Counting uses

record_use adds one to used_count and sets last_used_date to the server's
current time in one step. Prefer it over update_descriptor when an object is
used, so concurrent callers never lose a count.

## Clearing values

update_descriptor only changes the fields you pass. Pass last_used_date as an
empty string to clear it.

## Ordering

- identifier (default): ascending.
- last_used: most recent first; never-used descriptors last.
- used_count: highest first.

Ties are broken by identifier.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
