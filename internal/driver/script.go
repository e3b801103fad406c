package driver

import (
	"strconv"
	"strings"
)

// StepKind tags one entry of the stage-2 plan.
type StepKind int

const (
	StepLipSyncJimeng StepKind = iota
	StepLipSyncWan
	StepAssemble
)

func (k StepKind) String() string {
	switch k {
	case StepLipSyncJimeng:
		return "lipsync_jimeng"
	case StepLipSyncWan:
		return "lipsync_wan"
	case StepAssemble:
		return "assemble"
	default:
		return "unknown"
	}
}

// Step is one call the driver makes.
type Step struct {
	Kind   StepKind
	Module string
	Func   string
}

var (
	jimengStep = Step{
		Kind:   StepLipSyncJimeng,
		Module: "generate_lip_video.gen_lip_sycn_video_jimeng",
		Func:   "gen_lip_sync_video_jimeng",
	}
	wanStep = Step{
		Kind:   StepLipSyncWan,
		Module: "generate_lip_video.gen_lip_sycn_video",
		Func:   "gen_lip_sync_video",
	}
	assembleStep = Step{
		Kind:   StepAssemble,
		Module: "video_generate.video_generate_pipeline",
		Func:   "full_video_gen",
	}
)

// Plan returns zero or one lip-sync steps followed by final assembly.
func Plan(mode LipSyncMode) []Step {
	switch mode {
	case LipSyncJimeng:
		return []Step{jimengStep, assembleStep}
	case LipSyncWan:
		return []Step{wanStep, assembleStep}
	default:
		return []Step{assembleStep}
	}
}

// Build renders the stage-2 driver program for a project. It is pure; the
// caller decides where the file lives and when it goes away.
func Build(project string, mode LipSyncMode, resolution Resolution) string {
	name := strconv.Quote(project)
	if resolution != Resolution480p {
		resolution = Resolution720p
	}

	var b strings.Builder
	b.WriteString("from " + assembleStep.Module + " import " + assembleStep.Func + "\n")
	b.WriteString("from config import Config\n")
	for _, step := range Plan(mode) {
		switch step.Kind {
		case StepLipSyncJimeng:
			b.WriteString("from " + step.Module + " import " + step.Func + "\n")
			b.WriteString(step.Func + "(" + name + ", config=Config)\n")
		case StepLipSyncWan:
			b.WriteString("from " + step.Module + " import " + step.Func + "\n")
			b.WriteString(step.Func + "(" + name + ")\n")
		case StepAssemble:
			b.WriteString(step.Func + "(" + name + `, resolution="` + string(resolution) + `", config=Config)` + "\n")
		}
	}
	return b.String()
}
