package sim

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/gonewx/towerdefense"

// packageImports 返回目录下非测试源文件的全部 import 路径
func packageImports(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		t.Fatalf("glob %s: %v", dir, err)
	}
	var imports []string
	fset := token.NewFileSet()
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		parsed, err := parser.ParseFile(fset, f, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", f, err)
		}
		for _, spec := range parsed.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				t.Fatalf("import in %s: %v", f, err)
			}
			imports = append(imports, path)
		}
	}
	return imports
}

// 无界面的模拟核心与命令行模拟不能链接 ebiten（需要图形环境才能构建）
func TestHeadlessPackagesDoNotImportEbiten(t *testing.T) {
	root := filepath.Join("..", "..")
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("module root not found: %v", err)
	}

	for _, start := range []string{"pkg/sim", "pkg/game", "cmd/tdsim"} {
		t.Run(start, func(t *testing.T) {
			visited := map[string]bool{}
			queue := []string{start}
			for len(queue) > 0 {
				pkg := queue[0]
				queue = queue[1:]
				if visited[pkg] {
					continue
				}
				visited[pkg] = true

				for _, imp := range packageImports(t, filepath.Join(root, filepath.FromSlash(pkg))) {
					if strings.HasPrefix(imp, "github.com/hajimehoshi/ebiten") {
						t.Errorf("%s imports %s", pkg, imp)
					}
					if rel, ok := strings.CutPrefix(imp, modulePath+"/"); ok {
						queue = append(queue, rel)
					}
				}
			}
			if !visited["pkg/events"] {
				t.Errorf("依赖遍历没有到达 pkg/events，visited=%v", visited)
			}
		})
	}
}
