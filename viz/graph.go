// ABOUTME: GraphViz generation for partner pipelines and initiatives
// ABOUTME: Renders partner -> quarter -> opportunity and partner -> initiative graphs as DOT
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
)

// Graph types accepted by Generate.
const (
	GraphPipeline    = "pipeline"
	GraphPartner     = "partner"
	GraphInitiatives = "initiatives"
)

type GraphGenerator struct {
	tr *tracker.Tracker
}

func NewGraphGenerator(tr *tracker.Tracker) *GraphGenerator {
	return &GraphGenerator{tr: tr}
}

// Generate dispatches on graph type. partner is only used by GraphPartner.
func (g *GraphGenerator) Generate(ctx context.Context, graphType, partner string) (string, error) {
	switch graphType {
	case GraphPipeline:
		return g.GeneratePipelineGraph(ctx)
	case GraphPartner:
		if partner == "" {
			return "", fmt.Errorf("partner name required for partner graph")
		}
		return g.GeneratePartnerGraph(ctx, partner)
	case GraphInitiatives:
		return g.GenerateInitiativeGraph(ctx)
	}
	return "", fmt.Errorf("unknown graph type: %s (valid types: pipeline, partner, initiatives)", graphType)
}

// GeneratePipelineGraph links every partner group to the fiscal quarters it has deals in.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	groups := g.tr.Groups()
	return render(ctx, "Partner Pipeline", func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)

		quarterNodes := make(map[string]*cgraph.Node)
		for i, group := range groups {
			pn, err := graph.CreateNodeByName(fmt.Sprintf("partner_%d", i))
			if err != nil {
				return fmt.Errorf("failed to create partner node: %w", err)
			}
			pn.SetLabel(fmt.Sprintf("%s\n%s", group.Partner, report.FormatAmount(group.Total)))
			pn.SetShape("box")
			pn.SetStyle("filled")
			pn.SetFillColor(partnerColor(group.Partner))

			for _, bucket := range group.Quarters {
				qn, ok := quarterNodes[bucket.Label]
				if !ok {
					qn, err = graph.CreateNodeByName(nodeName("quarter", bucket.Label))
					if err != nil {
						return fmt.Errorf("failed to create quarter node: %w", err)
					}
					qn.SetLabel(bucket.Label)
					qn.SetShape("ellipse")
					quarterNodes[bucket.Label] = qn
				}
				edge, err := graph.CreateEdgeByName(fmt.Sprintf("%d_%s", i, bucket.Label), pn, qn)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel(fmt.Sprintf("%d / %s", bucket.Count(), report.FormatAmount(bucket.Total)))
			}
		}
		return nil
	})
}

// GeneratePartnerGraph expands one partner group down to its opportunities.
func (g *GraphGenerator) GeneratePartnerGraph(ctx context.Context, partner string) (string, error) {
	var group *report.PartnerGroup
	for _, pg := range g.tr.Groups() {
		if strings.EqualFold(pg.Partner, strings.TrimSpace(partner)) {
			group = &pg
			break
		}
	}
	if group == nil {
		return "", fmt.Errorf("%w: no pipeline for partner %q", tracker.ErrNotFound, partner)
	}

	return render(ctx, group.Partner, func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)

		root, err := graph.CreateNodeByName("partner")
		if err != nil {
			return fmt.Errorf("failed to create partner node: %w", err)
		}
		root.SetLabel(fmt.Sprintf("%s\n%s", group.Partner, report.FormatAmount(group.Total)))
		root.SetShape("box")
		root.SetStyle("filled")
		root.SetFillColor("lightblue")

		for _, bucket := range group.Quarters {
			qn, err := graph.CreateNodeByName(nodeName("quarter", bucket.Label))
			if err != nil {
				return fmt.Errorf("failed to create quarter node: %w", err)
			}
			qn.SetLabel(fmt.Sprintf("%s\n%s", bucket.Label, report.FormatAmount(bucket.Total)))
			if _, err := graph.CreateEdgeByName("", root, qn); err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}

			for _, opp := range bucket.Records {
				on, err := graph.CreateNodeByName(nodeName("opp", opp.ID))
				if err != nil {
					return fmt.Errorf("failed to create opportunity node: %w", err)
				}
				on.SetLabel(fmt.Sprintf("%s\n%s", opp.DisplayName(), report.FormatAmount(opp.Amount)))
				on.SetShape("diamond")
				on.SetStyle("filled")
				on.SetFillColor("lightyellow")
				if _, err := graph.CreateEdgeByName("", qn, on); err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
			}
		}
		return nil
	})
}

// GenerateInitiativeGraph links partners to their initiatives, grouped by target quarter.
func (g *GraphGenerator) GenerateInitiativeGraph(ctx context.Context) (string, error) {
	initiatives := g.tr.Initiatives()
	return render(ctx, "Partner Initiatives", func(graph *cgraph.Graph) error {
		quarterNodes := make(map[models.Quarter]*cgraph.Node)
		for _, q := range models.Quarters {
			n, err := graph.CreateNodeByName(nodeName("quarter", string(q)))
			if err != nil {
				return fmt.Errorf("failed to create quarter node: %w", err)
			}
			n.SetLabel(string(q))
			n.SetShape("ellipse")
			quarterNodes[q] = n
		}

		partnerNodes := make(map[string]*cgraph.Node)
		for _, ini := range initiatives {
			key := strings.ToLower(strings.TrimSpace(ini.Partner))
			pn, ok := partnerNodes[key]
			if !ok {
				var err error
				pn, err = graph.CreateNodeByName(nodeName("partner", key))
				if err != nil {
					return fmt.Errorf("failed to create partner node: %w", err)
				}
				pn.SetLabel(ini.Partner)
				pn.SetShape("box")
				pn.SetStyle("filled")
				pn.SetFillColor("lightblue")
				partnerNodes[key] = pn
			}

			in, err := graph.CreateNodeByName(nodeName("ini", ini.ID))
			if err != nil {
				return fmt.Errorf("failed to create initiative node: %w", err)
			}
			in.SetLabel(ini.Project)
			in.SetShape("note")
			if _, err := graph.CreateEdgeByName("", pn, in); err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge, err := graph.CreateEdgeByName("", in, quarterNodes[ini.TargetQuarter])
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
		return nil
	})
}

func render(ctx context.Context, label string, build func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(label)
	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func nodeName(kind, id string) string {
	return kind + "_" + strings.NewReplacer(" ", "_", "-", "_").Replace(id)
}

func partnerColor(partner string) string {
	if partner == report.OtherPartner {
		return "lightgrey"
	}
	return "lightblue"
}
