package cli

import (
	"strconv"

	"stride-cli/internal/model"
)

// Table forms for the list commands when --format table is in effect.

type taskTable []model.Task

func (taskTable) TableHeader() []string {
	return []string{"ID", "WK", "DAY", "PRI", "STATUS", "TITLE"}
}

func (ts taskTable) TableRows() [][]string {
	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		day := "-"
		if t.DueDay != nil {
			day = strconv.Itoa(*t.DueDay)
		}
		rows = append(rows, []string{
			t.ID, strconv.Itoa(t.WeekNumber), day,
			string(t.Priority), string(t.Status), t.Title,
		})
	}
	return rows
}

type planTable []model.Plan

func (planTable) TableHeader() []string {
	return []string{"ID", "START", "STATUS", "NAME"}
}

func (ps planTable) TableRows() [][]string {
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []string{p.ID, p.StartDate, string(p.Status), p.Name})
	}
	return rows
}

type goalTable []model.Goal

func (goalTable) TableHeader() []string {
	return []string{"ID", "CATEGORY", "PROGRESS", "TITLE"}
}

func (gs goalTable) TableRows() [][]string {
	rows := make([][]string, 0, len(gs))
	for _, g := range gs {
		rows = append(rows, []string{
			g.ID, string(g.Category), strconv.Itoa(g.ProgressPercentage) + "%", g.Title,
		})
	}
	return rows
}
