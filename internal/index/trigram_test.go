package index

import (
	"testing"
)

func TestTrigramSearchWholeWords(t *testing.T) {
	idx := NewTrigramIndex()

	content := `def outV(id) {
  g.v(id).outV
}

def run(id) {
  outVertices = outV(id)
  outV(id).each { println it }
  $outV = 1
}`

	idx.AddFile("/test/graph.groovy", []byte(content))

	refs := idx.Search("outV")
	for _, ref := range refs {
		t.Logf("  Line %d, Col %d, Len %d: %s", ref.Line, ref.Column, ref.Length, ref.LineText)
	}

	// definition, .outV, call, chained call; not outVertices or $outV
	if len(refs) != 4 {
		t.Fatalf("expected 4 references, got %d", len(refs))
	}

	want := []struct{ line, col int }{{1, 4}, {2, 10}, {6, 16}, {7, 2}}
	for i, w := range want {
		if refs[i].Line != w.line || refs[i].Column != w.col {
			t.Errorf("ref %d: expected %d:%d, got %d:%d", i, w.line, w.col, refs[i].Line, refs[i].Column)
		}
		if refs[i].Length != 4 {
			t.Errorf("ref %d: expected length 4, got %d", i, refs[i].Length)
		}
	}
}

func TestTrigramSearchAcrossFiles(t *testing.T) {
	idx := NewTrigramIndex()
	idx.AddFile("/test/b.groovy", []byte("def helper() {\n}\n"))
	idx.AddFile("/test/a.groovy", []byte("helper()\nhelper()\n"))
	idx.AddFile("/test/c.groovy", []byte("def other() {\n}\n"))

	refs := idx.Search("helper")
	if len(refs) != 3 {
		t.Fatalf("expected 3 references, got %d", len(refs))
	}
	if refs[0].FilePath != "/test/a.groovy" || refs[2].FilePath != "/test/b.groovy" {
		t.Errorf("expected results ordered by path, got %s, %s", refs[0].FilePath, refs[2].FilePath)
	}
}

func TestTrigramShortName(t *testing.T) {
	idx := NewTrigramIndex()
	idx.AddFile("/test/a.groovy", []byte("def f() {\n  f()\n}\n"))

	refs := idx.Search("f")
	if len(refs) != 2 {
		t.Errorf("expected 2 references, got %d", len(refs))
	}
	if refs := idx.Search(""); refs != nil {
		t.Errorf("expected no references for empty name, got %d", len(refs))
	}
}

func TestTrigramReplaceAndRemove(t *testing.T) {
	idx := NewTrigramIndex()
	idx.AddFile("/test/a.groovy", []byte("def alpha() {\n}\n"))

	if len(idx.Search("alpha")) != 1 {
		t.Fatal("expected alpha to be indexed")
	}

	idx.AddFile("/test/a.groovy", []byte("def beta() {\n}\n"))
	if len(idx.Search("alpha")) != 0 {
		t.Error("expected alpha to be gone after re-adding the file")
	}
	if len(idx.Search("beta")) != 1 {
		t.Error("expected beta to be indexed")
	}

	idx.RemoveFile("/test/a.groovy")
	if len(idx.Search("beta")) != 0 {
		t.Error("expected beta to be gone after removal")
	}
	if len(idx.postings) != 0 {
		t.Errorf("expected empty posting lists, got %d", len(idx.postings))
	}
}
