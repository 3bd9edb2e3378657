package view

import (
	"fmt"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// ShotStats shows how many photos were taken and when the last one was.
type ShotStats interface {
	SetCount(n int)
	SetLast(age string)
}

type shotStats struct {
	countLbl *LabelWidget
	lastLbl  *LabelWidget
}

// NewShotStats creates count and last-shot labels in a grid layout.
// The count label is placed at (row, startCol) and the last-shot label at (row, startCol+1).
// If parent is nil, labels are positioned relative to the App root.
func NewShotStats(parent *FrameWidget, row, startCol int) ShotStats {
	s := &shotStats{countLbl: Label(Width(12)), lastLbl: Label(Width(22))}
	for i, lbl := range []*LabelWidget{s.countLbl, s.lastLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.countLbl.Configure(Txt("Photos: 0"))
	s.lastLbl.Configure(Txt("Last: never"))
	return s
}

func (s *shotStats) SetCount(n int) {
	if s == nil || s.countLbl == nil {
		return
	}
	s.countLbl.Configure(Txt(fmt.Sprintf("Photos: %d", n)))
}

func (s *shotStats) SetLast(age string) {
	if s == nil || s.lastLbl == nil {
		return
	}
	s.lastLbl.Configure(Txt("Last: " + age))
}
