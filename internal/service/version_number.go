package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Семантика номеров версий:
//   - v1.0 → v1.1, v2.1 → v2.2 (двухчастный номер родителя поднимает минор)
//   - v2.1.1 → v2.1.2 (трёхчастный поднимает патч)
//   - новый корень получает v{max+1}.0 среди существующих корней

// nextVersionNumber вычисляет номер версии-потомка по номеру родителя.
// Нераспознаваемый формат даёт запасной v1.1, это не ошибка.
func nextVersionNumber(parentVersionNumber string) string {
	parts := splitVersion(parentVersionNumber)

	switch len(parts) {
	case 2:
		return fmt.Sprintf("v%d.%d", parts[0], parts[1]+1)
	case 3:
		return fmt.Sprintf("v%d.%d.%d", parts[0], parts[1], parts[2]+1)
	}

	log.Printf("Warning: malformed version number %q, falling back to v1.1", parentVersionNumber)
	return "v1.1"
}

// nextRootVersionNumber даёт номер нового корня по номерам существующих
// корней: v1.0 на пустой истории, дальше v{max+1}.0
func nextRootVersionNumber(existingRootNumbers []string) string {
	maxMajor := 0
	for _, number := range existingRootNumbers {
		if parts := splitVersion(number); len(parts) > 0 && parts[0] > maxMajor {
			maxMajor = parts[0]
		}
	}

	return fmt.Sprintf("v%d.0", maxMajor+1)
}

func splitVersion(number string) []int {
	raw := strings.Split(strings.TrimPrefix(number, "v"), ".")

	parts := make([]int, 0, len(raw))
	for _, p := range raw {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil
		}
		parts = append(parts, n)
	}

	return parts
}

// slugify приводит имя версии к имени ветки по умолчанию
func slugify(name string) string {
	var b strings.Builder
	lastDash := true

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "branch"
	}
	return slug
}
