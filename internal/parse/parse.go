package parse

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ChapterSelection parses the user input for ranges and parts into sorted
// 1-based chapter positions. Ranges are clipped to the available chapters.
func ChapterSelection(input string, count int) ([]int, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty chapter selection")
	}

	parts := strings.Split(input, ",")
	uniqueChapters := make(map[int]bool)

	for _, part := range parts {
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}
			start, end, err := getRange(rangeParts)
			if err != nil {
				return nil, err
			}

			for position := max(start, 1); position <= min(end, count); position++ {
				uniqueChapters[position] = true
			}
		} else {
			position, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			if position < 1 || position > count {
				return nil, fmt.Errorf("chapter %d out of range 1-%d", position, count)
			}
			uniqueChapters[position] = true
		}
	}

	selectedChapters := make([]int, 0, len(uniqueChapters))
	for position := range uniqueChapters {
		selectedChapters = append(selectedChapters, position)
	}
	slices.Sort(selectedChapters)

	return selectedChapters, nil
}

// getRange parses the user input for chapter ranges
func getRange(rangeParts []string) (int, int, error) {
	start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start of range: %s", rangeParts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end of range: %s", rangeParts[1])
	}

	if start > end {
		return 0, 0, fmt.Errorf("start of range should not be greater than end: %s-%s", rangeParts[0], rangeParts[1])
	}

	return start, end, nil
}
