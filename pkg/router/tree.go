package router

import "strings"

// routeNode is a node in the radix tree.
type routeNode struct {
	// segment is the static path segment this node matches
	segment string

	// entry is the route ending at this node
	entry *RouteEntry

	// children are static segment children
	children []*routeNode

	// paramChild is the dynamic segment child
	paramChild *routeNode

	// catchAllChild is the catch-all child
	catchAllChild *routeNode
}

func newRouteNode(segment string) *routeNode {
	return &routeNode{segment: segment}
}

// findChild finds a child node with an exact segment match.
func (n *routeNode) findChild(segment string) *routeNode {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *routeNode) addChild(segment string) *routeNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newRouteNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *routeNode) addParamChild() *routeNode {
	if n.paramChild == nil {
		n.paramChild = newRouteNode("")
	}
	return n.paramChild
}

func (n *routeNode) addCatchAllChild() *routeNode {
	if n.catchAllChild == nil {
		n.catchAllChild = newRouteNode("")
	}
	return n.catchAllChild
}

// insert adds e to the tree. Parameter names are not part of the tree; two
// entries of the same shape end at the same node and the first one wins.
// Build rejects such tables before they get here.
func (n *routeNode) insert(e *RouteEntry) {
	current := n
	for _, seg := range e.Segments {
		switch seg.Kind {
		case CatchAll:
			current = current.addCatchAllChild()
		case Dynamic:
			current = current.addParamChild()
		default:
			current = current.addChild(seg.Value)
		}
	}
	if current.entry == nil {
		current.entry = e
	}
}

// match finds the entry for the decoded path segments. Parameter values are
// appended to values in pattern order. Static children are tried first, then
// the dynamic child, then the catch-all, backtracking on failure.
func (n *routeNode) match(segments []string, values []string) (*RouteEntry, []string) {
	if len(segments) == 0 {
		if n.entry != nil {
			return n.entry, values
		}
		return nil, nil
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		if e, v := child.match(remaining, values); e != nil {
			return e, v
		}
	}

	// A decoded "/" can only be captured by a catch-all.
	if n.paramChild != nil && !strings.Contains(segment, "/") {
		if e, v := n.paramChild.match(remaining, append(values, segment)); e != nil {
			return e, v
		}
	}

	if n.catchAllChild != nil && n.catchAllChild.entry != nil {
		return n.catchAllChild.entry, append(values, strings.Join(segments, "/"))
	}

	return nil, nil
}

// bind maps matched values onto the entry's parameter names.
func bind(e *RouteEntry, values []string) map[string]string {
	params := make(map[string]string, len(values))
	for i, name := range e.Params() {
		if i < len(values) {
			params[name] = values[i]
		}
	}
	return params
}

// splitPath splits a canonical path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
