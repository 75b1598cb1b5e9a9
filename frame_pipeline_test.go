package ezffmpeg

import "testing"

func pipelineNames(p *FramePipeline) []string {
	var names []string
	for node := p.First(); node != nil; node = node.Next() {
		names = append(names, node.Name())
	}
	return names
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func nop() NopFilter { return NopFilter{Type: MediaTypeVideo} }

func TestPipelineListOperations(t *testing.T) {
	p := newFramePipeline(0, "0:v", MediaTypeVideo)

	p.AddLast("b", nop())
	p.AddFirst("a", nop())
	p.AddLast("d", nop())
	if !p.AddBefore("d", "c", nop()) {
		t.Fatal("AddBefore failed")
	}
	if !p.AddAfter("d", "e", nop()) {
		t.Fatal("AddAfter failed")
	}

	if got := pipelineNames(p); !equalNames(got, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("order = %v", got)
	}
	if p.Len() != 5 {
		t.Errorf("Len = %d", p.Len())
	}
	if p.First().Name() != "a" || p.Last().Name() != "e" {
		t.Errorf("ends = %s, %s", p.First().Name(), p.Last().Name())
	}

	if p.AddBefore("missing", "x", nop()) {
		t.Error("AddBefore found a missing base")
	}

	if removed := p.Remove("c"); removed == nil {
		t.Error("Remove returned nil")
	}
	if got := pipelineNames(p); !equalNames(got, []string{"a", "b", "d", "e"}) {
		t.Fatalf("after remove = %v", got)
	}

	if old := p.Replace("b", "b2", nop()); old == nil {
		t.Error("Replace returned nil")
	}
	if p.Find("b") != nil || p.Find("b2") == nil {
		t.Error("Replace did not rename the node")
	}

	// removing the ends relinks head and tail
	p.Remove("a")
	p.Remove("e")
	if p.First().Name() != "b2" || p.Last().Name() != "d" {
		t.Errorf("ends after edge removal = %s, %s", p.First().Name(), p.Last().Name())
	}
}

func TestPipelineNeighbors(t *testing.T) {
	p := newFramePipeline(0, "0:v", MediaTypeVideo)
	p.AddLast("a", nop())
	p.AddLast("b", nop())

	a := p.Find("a")
	if a.Prev() != nil || a.Next().Name() != "b" {
		t.Error("neighbor links wrong")
	}
	if a.Pipeline() != p {
		t.Error("Pipeline() does not return owner")
	}
}

func TestPipelineAttributes(t *testing.T) {
	p := newFramePipeline(0, "0:v", MediaTypeVideo)
	p.SetAttribute("frames", 10)
	if v, ok := p.Attribute("frames"); !ok || v.(int) != 10 {
		t.Errorf("Attribute = %v, %v", v, ok)
	}
	if v := p.RemoveAttribute("frames"); v.(int) != 10 {
		t.Errorf("RemoveAttribute = %v", v)
	}
	if _, ok := p.Attribute("frames"); ok {
		t.Error("attribute not removed")
	}
}

func TestPipelineTypeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	p := newFramePipeline(0, "0:v", MediaTypeVideo)
	p.AddLast("a", NopFilter{Type: MediaTypeAudio})
}

func TestPipelineBuilderOrder(t *testing.T) {
	pb := NewFramePipeline(MediaTypeVideo).
		Filter("one", nop()).
		Filter("two", nop()).
		SetStreamIndex(3).
		SetLinkLabel("0:v")

	p := pb.build(3, "0:v")
	if got := pipelineNames(p); !equalNames(got, []string{"one", "two"}) {
		t.Errorf("order = %v", got)
	}
	if p.StreamIndex() != 3 || p.LinkLabel() != "0:v" || p.MediaType() != MediaTypeVideo {
		t.Errorf("identity = %d %q %v", p.StreamIndex(), p.LinkLabel(), p.MediaType())
	}
}
