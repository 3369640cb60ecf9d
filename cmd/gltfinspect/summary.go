package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	nodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// summary is the printable description of a document.
type summary struct {
	File           string        `yaml:"file"`
	Version        string        `yaml:"version"`
	Generator      string        `yaml:"generator,omitempty"`
	Counts         counts        `yaml:"counts"`
	ExtensionsUsed []string      `yaml:"extensionsUsed,omitempty"`
	Scene          string        `yaml:"scene,omitempty"`
	Nodes          []sceneNode   `yaml:"nodes,omitempty"`
	Accessor       *accessorDump `yaml:"accessor,omitempty"`
}

type counts struct {
	Scenes     int `yaml:"scenes"`
	Nodes      int `yaml:"nodes"`
	Meshes     int `yaml:"meshes"`
	Materials  int `yaml:"materials"`
	Textures   int `yaml:"textures"`
	Images     int `yaml:"images"`
	Accessors  int `yaml:"accessors"`
	Buffers    int `yaml:"buffers"`
	Skins      int `yaml:"skins"`
	Animations int `yaml:"animations"`
	Cameras    int `yaml:"cameras"`
}

type sceneNode struct {
	Name     string      `yaml:"name"`
	Mesh     string      `yaml:"mesh,omitempty"`
	Skinned  bool        `yaml:"skinned,omitempty"`
	Children []sceneNode `yaml:"children,omitempty"`
}

type accessorDump struct {
	Index         int         `yaml:"index"`
	Type          string      `yaml:"type"`
	ComponentType string      `yaml:"componentType"`
	Normalized    bool        `yaml:"normalized,omitempty"`
	Sparse        bool        `yaml:"sparse,omitempty"`
	Count         int         `yaml:"count"`
	Values        [][]float32 `yaml:"values"`
}

// summarize describes doc. accessor < 0 skips the accessor dump.
func summarize(file string, doc *document.Document, accessor, limit int) (*summary, error) {
	s := &summary{
		File:           file,
		Version:        doc.Asset.Version,
		Generator:      doc.Asset.Generator,
		ExtensionsUsed: doc.ExtensionsUsed,
		Counts: counts{
			Scenes:     len(doc.Scenes),
			Nodes:      len(doc.Nodes),
			Meshes:     len(doc.Meshes),
			Materials:  len(doc.Materials),
			Textures:   len(doc.Textures),
			Images:     len(doc.Images),
			Accessors:  len(doc.Accessors),
			Buffers:    len(doc.Buffers),
			Skins:      len(doc.Skins),
			Animations: len(doc.Animations),
			Cameras:    len(doc.Cameras),
		},
	}

	roots := doc.RootNodes()
	if scene := doc.DefaultScene(); scene != nil {
		s.Scene = common.Coalesce(scene.Name, fmt.Sprintf("scene_%d", scene.Index))
		roots = scene.Nodes
	}
	visited := make(map[*document.Node]bool)
	for _, n := range roots {
		if node, ok := describeNode(n, visited); ok {
			s.Nodes = append(s.Nodes, node)
		}
	}

	if accessor >= 0 {
		if accessor >= len(doc.Accessors) {
			return nil, fmt.Errorf("accessor %d out of range, document has %d", accessor, len(doc.Accessors))
		}
		dump, err := dumpAccessor(doc.Accessors[accessor], limit)
		if err != nil {
			return nil, err
		}
		s.Accessor = dump
	}

	return s, nil
}

func describeNode(n *document.Node, visited map[*document.Node]bool) (sceneNode, bool) {
	if visited[n] {
		return sceneNode{}, false
	}
	visited[n] = true

	out := sceneNode{
		Name:    common.Coalesce(n.Name, fmt.Sprintf("node_%d", n.Index)),
		Skinned: n.Skin != nil,
	}
	if n.Mesh != nil {
		out.Mesh = common.Coalesce(n.Mesh.Name, fmt.Sprintf("mesh_%d", n.Mesh.Index))
	}
	for _, c := range n.Children {
		if child, ok := describeNode(c, visited); ok {
			out.Children = append(out.Children, child)
		}
	}
	return out, true
}

func dumpAccessor(a *document.Accessor, limit int) (*accessorDump, error) {
	dump := &accessorDump{
		Index:         a.Index,
		Type:          string(a.Type),
		ComponentType: a.ComponentType.String(),
		Normalized:    a.Normalized,
		Sparse:        a.Sparse != nil,
		Count:         a.Count,
	}
	n := min(max(limit, 0), a.Count)
	dump.Values = make([][]float32, n)
	for i := range n {
		v := make([]float32, a.Type.Components())
		if err := a.ReadFloat(i, v); err != nil {
			return nil, fmt.Errorf("accessor %d: %w", a.Index, err)
		}
		dump.Values[i] = v
	}
	return dump, nil
}

// renderText formats s for a terminal.
func renderText(s *summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.File))
	b.WriteString("\n\n")

	field := func(label string, value any) {
		fmt.Fprintf(&b, "%s %v\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	field("version", s.Version)
	if s.Generator != "" {
		field("generator", s.Generator)
	}
	if len(s.ExtensionsUsed) > 0 {
		field("extensions", strings.Join(s.ExtensionsUsed, ", "))
	}
	c := s.Counts
	field("scenes", c.Scenes)
	field("nodes", c.Nodes)
	field("meshes", c.Meshes)
	field("materials", c.Materials)
	field("textures", fmt.Sprintf("%d (%d images)", c.Textures, c.Images))
	field("accessors", c.Accessors)
	field("buffers", c.Buffers)
	field("skins", c.Skins)
	field("animations", c.Animations)
	field("cameras", c.Cameras)

	if len(s.Nodes) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(common.Coalesce(s.Scene, "nodes")))
		b.WriteString("\n")
		for _, n := range s.Nodes {
			writeNode(&b, n, 1)
		}
	}

	if a := s.Accessor; a != nil {
		b.WriteString("\n")
		header := fmt.Sprintf("accessor %d: %s %s x%d", a.Index, a.Type, a.ComponentType, a.Count)
		if a.Normalized {
			header += " normalized"
		}
		if a.Sparse {
			header += " sparse"
		}
		b.WriteString(labelStyle.Render(header))
		b.WriteString("\n")
		for i, v := range a.Values {
			fmt.Fprintf(&b, "  %s %v\n", dimStyle.Render(fmt.Sprintf("[%d]", i)), v)
		}
		if len(a.Values) < a.Count {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", a.Count-len(a.Values))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeNode(b *strings.Builder, n sceneNode, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(nodeStyle.Render(n.Name))
	if n.Mesh != "" {
		b.WriteString(dimStyle.Render(" mesh=" + n.Mesh))
	}
	if n.Skinned {
		b.WriteString(dimStyle.Render(" skinned"))
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
}
