// ABOUTME: Graphviz rendering of the contact-to-case role network
// ABOUTME: Draws contacts and cases as nodes with role-labeled edges
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"

	"salesdesk/models"
	"salesdesk/store"
)

type GraphGenerator struct {
	client *store.Client
}

func NewGraphGenerator(client *store.Client) *GraphGenerator {
	return &GraphGenerator{client: client}
}

// GenerateRoleGraph renders the role network as DOT. With a contact id it
// shows that contact's cases; without one it walks every listed contact.
func (g *GraphGenerator) GenerateRoleGraph(ctx context.Context, contactID *uuid.UUID) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLayout("neato")
	graph.SetRankDir(cgraph.LRRank)

	var contacts []models.Contact
	if contactID != nil {
		contact, err := g.client.FetchContact(ctx, *contactID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch contact: %w", err)
		}
		contacts = []models.Contact{*contact}
	} else {
		contacts, err = g.client.ListContacts(ctx, 200)
		if err != nil {
			return "", fmt.Errorf("failed to list contacts: %w", err)
		}
	}

	caseNodes := make(map[uuid.UUID]*cgraph.Node)
	for i := range contacts {
		contact := &contacts[i]
		name := contact.DisplayName()
		if name == "" {
			name = contact.ID.String()[:8]
		}
		contactNode, err := graph.CreateNodeByName(name)
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}

		cases, err := g.client.FetchCaseHistory(ctx, contact.ID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch case history: %w", err)
		}
		for _, c := range cases {
			node, exists := caseNodes[c.ID]
			if !exists {
				node, err = graph.CreateNodeByName(c.Title)
				if err != nil {
					return "", fmt.Errorf("failed to create case node: %w", err)
				}
				node.SetShape(cgraph.BoxShape)
				caseNodes[c.ID] = node
			}

			edge, err := graph.CreateEdgeByName("", contactNode, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			if len(c.Roles) > 0 {
				edge.SetLabel(strings.Join(c.Roles, ", "))
			}
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}
