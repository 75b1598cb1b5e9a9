package ezffmpeg

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestBuildRequiresInputAndOutput(t *testing.T) {
	if _, err := NewContext().OutputURL("out.mp4").Build(); !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
	if _, err := NewContext().InputURL("in.mp4").Build(); !errors.Is(err, ErrNoOutput) {
		t.Errorf("err = %v, want ErrNoOutput", err)
	}
}

func TestBuildRejectsMultipleReaderInputs(t *testing.T) {
	_, err := NewContext().
		Input(InputFromReader(strings.NewReader("a")).Format("flv")).
		Input(InputFromReader(strings.NewReader("b")).Format("flv")).
		OutputURL("out.mp4").
		Build()
	if !errors.Is(err, ErrMultipleReaderInputs) {
		t.Errorf("err = %v, want ErrMultipleReaderInputs", err)
	}
}

func TestBuildWriterOutputNeedsFormat(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewContext().
		InputURL("in.mp4").
		Output(OutputToWriter(&buf)).
		Build()
	if !errors.Is(err, ErrOutputFormatRequired) {
		t.Errorf("err = %v, want ErrOutputFormatRequired", err)
	}

	_, err = NewContext().
		InputURL("in.mp4").
		Output(OutputToWriter(&buf).Format("mpegts")).
		Build()
	if err != nil {
		t.Errorf("err = %v, want nil with explicit format", err)
	}
}

func TestBuildRejectsMultipleWriterOutputs(t *testing.T) {
	var a, b bytes.Buffer
	_, err := NewContext().
		InputURL("in.mp4").
		Output(OutputToWriter(&a).Format("mpegts")).
		Output(OutputToWriter(&b).Format("mpegts")).
		Build()
	if !errors.Is(err, ErrMultipleWriterOutputs) {
		t.Errorf("err = %v, want ErrMultipleWriterOutputs", err)
	}
}

func TestBuildDropsEmptyPipelines(t *testing.T) {
	c, err := NewContext().
		Input(NewInput("in.mp4").FramePipeline(NewFramePipeline(MediaTypeVideo))).
		OutputURL("out.mp4").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if c.hasPipelines() {
		t.Error("empty pipeline should be dropped")
	}
}

func TestBuildRejectsMixedPipelineTypes(t *testing.T) {
	_, err := NewContext().
		Input(NewInput("in.mp4").
			FramePipeline(NewFramePipeline(MediaTypeVideo).Filter("v", NopFilter{Type: MediaTypeVideo}))).
		Output(NewOutput("out.mp4").
			FramePipeline(NewFramePipeline(MediaTypeAudio).Filter("a", NopFilter{Type: MediaTypeAudio}))).
		Build()
	if !errors.Is(err, ErrMixedPipelineTypes) {
		t.Errorf("err = %v, want ErrMixedPipelineTypes", err)
	}
}

func TestBuildPipelineRequiresSingleURLInput(t *testing.T) {
	pb := NewFramePipeline(MediaTypeVideo).Filter("v", NopFilter{Type: MediaTypeVideo})

	_, err := NewContext().
		Input(NewInput("a.mp4").FramePipeline(pb)).
		InputURL("b.mp4").
		OutputURL("out.mp4").
		Build()
	if !errors.Is(err, ErrPipelineInput) {
		t.Errorf("two inputs: err = %v, want ErrPipelineInput", err)
	}

	_, err = NewContext().
		Input(InputFromReader(strings.NewReader("x")).Format("flv").FramePipeline(pb)).
		OutputURL("out.mp4").
		Build()
	if !errors.Is(err, ErrPipelineInput) {
		t.Errorf("reader input: err = %v, want ErrPipelineInput", err)
	}
}

func TestBuildCollectsPipelinesFromBothSides(t *testing.T) {
	c, err := NewContext().
		Input(NewInput("in.mp4").
			FramePipeline(NewFramePipeline(MediaTypeVideo).Filter("first", NopFilter{Type: MediaTypeVideo}))).
		Output(NewOutput("out.mp4").
			FramePipeline(NewFramePipeline(MediaTypeVideo).Filter("second", NopFilter{Type: MediaTypeVideo}))).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if !c.hasPipelines() || len(c.pipelines) != 2 {
		t.Fatalf("pipelines = %d, want 2", len(c.pipelines))
	}

	merged := c.mergedPipeline(0, 0)
	if merged.Len() != 2 {
		t.Fatalf("merged len = %d, want 2", merged.Len())
	}
	if merged.First().Name() != "first" || merged.Last().Name() != "second" {
		t.Errorf("merged order = %s, %s", merged.First().Name(), merged.Last().Name())
	}
	if merged.LinkLabel() != "0:v:0" {
		t.Errorf("link label = %q, want %q", merged.LinkLabel(), "0:v:0")
	}
}

func TestBuildRejectsConflictingStreamPins(t *testing.T) {
	_, err := NewContext().
		Input(NewInput("in.mp4").
			FramePipeline(NewFramePipeline(MediaTypeVideo).
				SetStreamIndex(1).
				Filter("a", NopFilter{Type: MediaTypeVideo})).
			FramePipeline(NewFramePipeline(MediaTypeVideo).
				SetStreamIndex(2).
				Filter("b", NopFilter{Type: MediaTypeVideo}))).
		OutputURL("out.mp4").
		Build()
	if !errors.Is(err, ErrPipelineStreamConflict) {
		t.Errorf("two indexes: err = %v, want ErrPipelineStreamConflict", err)
	}

	_, err = NewContext().
		Input(NewInput("in.mp4").
			FramePipeline(NewFramePipeline(MediaTypeVideo).
				SetStreamIndex(1).
				Filter("a", NopFilter{Type: MediaTypeVideo})).
			FramePipeline(NewFramePipeline(MediaTypeVideo).
				SetLinkLabel("0:v:1").
				Filter("b", NopFilter{Type: MediaTypeVideo}))).
		OutputURL("out.mp4").
		Build()
	if !errors.Is(err, ErrPipelineStreamConflict) {
		t.Errorf("index and label: err = %v, want ErrPipelineStreamConflict", err)
	}
}

func TestBuildValidatesLinkLabel(t *testing.T) {
	build := func(label string) error {
		_, err := NewContext().
			Input(NewInput("in.mp4").
				FramePipeline(NewFramePipeline(MediaTypeVideo).
					SetLinkLabel(label).
					Filter("v", NopFilter{Type: MediaTypeVideo}))).
			OutputURL("out.mp4").
			Build()
		return err
	}

	if err := build("0:v:1"); err != nil {
		t.Errorf("valid label: err = %v", err)
	}
	if err := build("bogus"); err == nil {
		t.Error("malformed label accepted")
	}
	if err := build("1:v"); !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("foreign input label: err = %v, want ErrStreamNotFound", err)
	}
	if err := build("0:a"); !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("wrong media type label: err = %v, want ErrStreamNotFound", err)
	}
}
