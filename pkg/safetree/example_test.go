package safetree_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/safetree/pkg/safetree"
)

func ExampleStringify() {
	type node struct {
		Name string
		Next *node
	}
	n := &node{Name: "loop"}
	n.Next = n

	line, _ := safetree.Stringify(n, safetree.DefaultMaxDepth)
	fmt.Println(line)
	// Output: {"Name":"loop","Next":"refTo^"}
}

func ExampleStringify_errors() {
	err := errors.New("connection refused")
	line, _ := safetree.Stringify(map[string]any{"first": err, "retry": err}, 2)
	fmt.Println(line)
	// Output: {"first":{"message":"connection refused","stack":"pruned"},"retry":"refTo^.first"}
}

func ExampleLocate() {
	cfg := map[string]any{
		"backends": []any{
			map[string]any{"host": "a.internal"},
			map[string]any{"host": "b.internal", "token": "s3cret"},
		},
	}
	paths, _ := safetree.Locate(cfg, "s3cret")
	fmt.Println(paths)
	// Output: [.backends[1].token]
}

func ExampleValue() {
	req := map[string]any{"method": "GET", "retries": 2}
	fmt.Println(safetree.Value(req))
	// Output: {"method":"GET","retries":2}
}
