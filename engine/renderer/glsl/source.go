package glsl

const (
	VertexMarker   = "__VERTEX__"
	FragmentMarker = "__FRAGMENT__"
)

// Sections is a combined shader source split into its two stages.
type Sections struct {
	Vertex   string
	Fragment string
}

// Split cuts a combined source at the last occurrence of each stage marker. Markers
// written inside comments are not occurrences, so commented-out examples earlier or
// later in the file cannot shift the split point.
func Split(source string) (Sections, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return Sections{}, err
	}

	vertex, fragment := -1, -1
	var vertexTok, fragmentTok Token
	for _, tok := range tokens {
		if tok.Kind != TokenIdent {
			continue
		}
		switch tok.Lexeme {
		case VertexMarker:
			vertex, vertexTok = tok.Offset, tok
		case FragmentMarker:
			fragment, fragmentTok = tok.Offset, tok
		}
	}

	if vertex < 0 {
		return Sections{}, errorf(Position{}, "missing %s marker", VertexMarker)
	}
	if fragment < 0 {
		return Sections{}, errorf(Position{}, "missing %s marker", FragmentMarker)
	}
	if vertex > fragment {
		return Sections{}, errorf(vertexTok.Pos(), "%s marker must precede %s marker (found at %s)",
			VertexMarker, FragmentMarker, fragmentTok.Pos())
	}

	return Sections{
		Vertex:   source[vertex+len(VertexMarker) : fragment],
		Fragment: source[fragment+len(FragmentMarker):],
	}, nil
}
