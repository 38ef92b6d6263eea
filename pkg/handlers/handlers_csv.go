package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ScheduleCSV handles CSV file uploads for scheduling.
//
// people_file has a "name" column, tasks_file has "name,people[,kind]" and the
// optional locked_file has "week,task,person". The answer holds one row per
// week and task with the assignees joined by "|".
func (h *Handler) ScheduleCSV(c *gin.Context) {
	peopleFile, _ := c.FormFile("people_file")
	tasksFile, _ := c.FormFile("tasks_file")
	lockedFile, _ := c.FormFile("locked_file")

	if peopleFile == nil || tasksFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "people_file and tasks_file are required"})
		return
	}

	input := models.ScheduleInput{StartWeek: c.PostForm("start_week")}

	if raw := c.PostForm("weeks"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weeks must be a number"})
			return
		}
		input.Weeks = weeks
	}
	if raw := c.PostForm("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an unsigned 32-bit number"})
			return
		}
		s := uint32(seed)
		input.Seed = &s
	}

	err := readCSV(peopleFile, []string{"name"}, func(row map[string]string) error {
		input.People = append(input.People, row["name"])
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "people_file: " + err.Error()})
		return
	}

	err = readCSV(tasksFile, []string{"name", "people"}, func(row map[string]string) error {
		n, err := strconv.Atoi(row["people"])
		if err != nil {
			return fmt.Errorf("task %q: people must be a number", row["name"])
		}
		input.Tasks = append(input.Tasks, models.TaskInput{Name: row["name"], People: n, Kind: row["kind"]})
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tasks_file: " + err.Error()})
		return
	}

	if lockedFile != nil {
		input.LockedWeeks = make(map[string]map[string][]string)
		err = readCSV(lockedFile, []string{"week", "task", "person"}, func(row map[string]string) error {
			week := input.LockedWeeks[row["week"]]
			if week == nil {
				week = make(map[string][]string)
				input.LockedWeeks[row["week"]] = week
			}
			week[row["task"]] = append(week[row["task"]], row["person"])
			return nil
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "locked_file: " + err.Error()})
			return
		}
	}

	resp, err := h.Generate(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.RecordUsage(c, len(resp.Weeks), len(input.People))

	// Export CSV
	var outCSV strings.Builder
	if err := writeScheduleCSV(&outCSV, resp); err != nil {
		h.fail(c, fmt.Errorf("encode csv: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"csv":       outCSV.String(),
		"truncated": resp.Truncated,
	})
}

// readCSV calls fn for every record of an uploaded file keyed by the header.
// Cells are trimmed and blank lines skipped.
func readCSV(fh *multipart.FileHeader, required []string, fn func(map[string]string) error) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return errors.New("failed to read header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row := make(map[string]string, len(cols))
		for name, i := range cols {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// writeScheduleCSV writes one "week,task,assignees" row per task and week
func writeScheduleCSV(w io.Writer, resp models.ScheduleResponse) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"week", "task", "assignees"}); err != nil {
		return err
	}
	for _, week := range resp.Weeks {
		for i, task := range resp.Tasks {
			if err := writer.Write([]string{week.Week, task, strings.Join(week.Assignees[i], "|")}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
