package drawer

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-stage/internal/store"
	"github.com/askiada/go-stage/pkg/pipeline/measure"
)

const labelAttribute = "label"

// DOTDrawer is a drawer that writes the pipeline graph in the Graphviz DOT language.
type DOTDrawer struct {
	graph graph.Graph[string, string]
	store store.VertexStore[string, string]
	out   io.Writer
}

// NewDOTDrawer creates a new DOT drawer writing to out.
func NewDOTDrawer(out io.Writer) *DOTDrawer {
	st := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		out:   out,
		store: st,
		graph: graph.NewWithStore(graph.StringHash, graph.Store[string, string](st), graph.Directed()),
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a channel between two stages. Several channels between the same stages share one edge.
func (d *DOTDrawer) AddLink(producer, consumer, channelName string) error {
	err := d.graph.AddEdge(producer, consumer, graph.EdgeAttribute(labelAttribute, channelName))
	if err == nil {
		return nil
	}

	if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", producer, consumer)
	}

	edge, err := d.graph.Edge(producer, consumer)
	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", producer, consumer)
	}

	label := edge.Properties.Attributes[labelAttribute] + ", " + channelName

	err = d.graph.UpdateEdge(producer, consumer, graph.EdgeAttribute(labelAttribute, label))
	if err != nil {
		return errors.Wrapf(err, "unable to update edge from %s to %s", producer, consumer)
	}

	return nil
}

// Draw writes the pipeline graph.
func (d *DOTDrawer) Draw() error {
	err := dot(d.graph, d.out)
	if err != nil {
		return errors.Wrap(err, "unable to write dot graph")
	}

	return nil
}

// SetTotalTime sets the total time for the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, total time.Duration) error {
	err := d.store.UpdateVertex(stageName, graph.VertexAttribute("xlabel", "total: "+total.String()))
	if err != nil {
		return errors.Wrapf(err, "unable to update vertex %s", stageName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure labels stages with their average push wait and edges with the average time the consumer waited for
// a message. Edges are coloured from blue, the shortest wait, to red, the longest.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	allChanElapsed := make(map[time.Duration]string)

	for _, stage := range msr.AllMetrics() {
		for _, info := range stage.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			allChanElapsed[info.Elapsed] = ""
		}
	}

	if len(allChanElapsed) > 0 {
		sortedAllChanElapsed := slices.Sorted(maps.Keys(allChanElapsed))
		minValue := sortedAllChanElapsed[0]
		maxValue := sortedAllChanElapsed[len(sortedAllChanElapsed)-1]

		for curr := range allChanElapsed {
			fraction := 1.0
			if maxValue > minValue {
				fraction = float64(curr-minValue) / float64(maxValue-minValue)
			}

			red := maxRGB * fraction
			blue := maxRGB - red

			colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
			if err != nil {
				return errors.Wrap(err, "unable to get colour")
			}

			allChanElapsed[curr] = colour.ToHEX().String()
		}
	}

	err := d.updateMetrics(msr, allChanElapsed)
	if err != nil {
		return errors.Wrap(err, "unable to update metrics")
	}

	return nil
}

func (d *DOTDrawer) updateMetrics(msr measure.Measure, allChanElapsed map[time.Duration]string) error {
	for name, stage := range msr.AllMetrics() {
		labels := []string{}
		if avg := stage.AVGDuration(); avg != 0 {
			labels = append(labels, "push: "+avg.String())
		}

		if total := stage.GetTotalDuration(); total > 0 {
			labels = append(labels, "total: "+total.String())
		}

		if len(labels) > 0 {
			err := d.store.UpdateVertex(name, graph.VertexAttribute("xlabel", strings.Join(labels, ", ")))
			if err != nil {
				return errors.Wrapf(err, "unable to update vertex %s", name)
			}
		}

		for inputStage, info := range stage.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			edge, err := d.graph.Edge(inputStage, name)
			if err != nil {
				return errors.Wrapf(err, "unable to get edge from %s to %s", inputStage, name)
			}

			err = d.graph.UpdateEdge(inputStage, name,
				graph.EdgeAttribute(labelAttribute, edge.Properties.Attributes[labelAttribute]+" ("+info.Elapsed.String()+")"),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", allChanElapsed[info.Elapsed]), //nolint
			)
			if err != nil {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [dot] function.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// generateDOT describes gra with its vertices and edges sorted by name, so that the output is stable.
func generateDOT(gra graph.Graph[string, string], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range slices.Sorted(maps.Keys(adjacencyMap)) {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		sourceAttributes := maps.Clone(sourceProperties.Attributes)
		if sourceAttributes == nil {
			sourceAttributes = make(map[string]string)
		}

		htmlAttributes := make(map[string]string)

		if xlabel, ok := sourceAttributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceAttributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})

		adjacencies := adjacencyMap[vertex]
		for _, adjacency := range slices.Sorted(maps.Keys(adjacencies)) {
			edge := adjacencies[adjacency]
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
