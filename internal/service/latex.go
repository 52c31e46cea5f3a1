package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Шаблоны LaTeX собираются из формы документа. Структуры ниже описывают
// только поля, которые попадают в вёрстку; остальное содержимое data-блоба
// просто игнорируется при разборе.

type resumeData struct {
	PersonalInfo    personalInfo    `json:"personalInfo"`
	Summary         string          `json:"summary"`
	SkillCategories []skillCategory `json:"skillCategories"`
	Experiences     []experience    `json:"experiences"`
	Education       []education     `json:"education"`
	Projects        []project       `json:"projects"`
	Certifications  []string        `json:"certifications"`
	Languages       []string        `json:"languages"`
}

type personalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Website   string `json:"website"`
}

type skillCategory struct {
	Name   string `json:"name"`
	Skills string `json:"skills"`
}

type experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type education struct {
	Degree         string `json:"degree"`
	University     string `json:"university"`
	Location       string `json:"location"`
	GraduationDate string `json:"graduationDate"`
}

type project struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
}

type coverLetterData struct {
	PersonalInfo   personalInfo `json:"personalInfo"`
	RecipientName  string       `json:"recipientName"`
	CompanyName    string       `json:"companyName"`
	Date           string       `json:"date"`
	Salutation     string       `json:"salutation"`
	BodyParagraphs []string     `json:"bodyParagraphs"`
	Closing        string       `json:"closing"`
}

var latexReplacer = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

func escapeLatex(text string) string {
	return latexReplacer.Replace(text)
}

// renderResumeTex собирает документ, включая только заполненные секции
func renderResumeTex(raw json.RawMessage) (string, error) {
	var data resumeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to parse resume data: %w", err)
	}

	var b strings.Builder
	b.WriteString("\\documentclass[10pt,a4paper]{article}\n")
	b.WriteString("\\usepackage[margin=1.5cm]{geometry}\n")
	b.WriteString("\\usepackage{enumitem}\n")
	b.WriteString("\\usepackage{titlesec}\n")
	b.WriteString("\\pagestyle{empty}\n")
	b.WriteString("\\titleformat{\\section}{\\large\\bfseries}{}{0pt}{}[\\titlerule]\n")
	b.WriteString("\\begin{document}\n\n")

	pi := data.PersonalInfo
	name := strings.TrimSpace(pi.FirstName + " " + pi.LastName)
	if name != "" {
		b.WriteString(fmt.Sprintf("\\begin{center}{\\LARGE\\bfseries %s}\\\\[2pt]\n", escapeLatex(name)))
		contacts := make([]string, 0, 4)
		for _, c := range []string{pi.Email, pi.Phone, pi.Location, pi.LinkedIn, pi.GitHub, pi.Website} {
			if c != "" {
				contacts = append(contacts, escapeLatex(c))
			}
		}
		if len(contacts) > 0 {
			b.WriteString(strings.Join(contacts, " \\textbar{} "))
			b.WriteString("\n")
		}
		b.WriteString("\\end{center}\n\n")
	}

	if strings.TrimSpace(data.Summary) != "" {
		b.WriteString("\\section*{Summary}\n")
		b.WriteString(escapeLatex(data.Summary))
		b.WriteString("\n\n")
	}

	if hasSkills(data.SkillCategories) {
		b.WriteString("\\section*{Skills}\n\\begin{itemize}[leftmargin=*,nosep]\n")
		for _, cat := range data.SkillCategories {
			if strings.TrimSpace(cat.Name) == "" && strings.TrimSpace(cat.Skills) == "" {
				continue
			}
			b.WriteString(fmt.Sprintf("\\item \\textbf{%s:} %s\n",
				escapeLatex(cat.Name), escapeLatex(cat.Skills)))
		}
		b.WriteString("\\end{itemize}\n\n")
	}

	if len(data.Experiences) > 0 {
		b.WriteString("\\section*{Experience}\n")
		for _, exp := range data.Experiences {
			if strings.TrimSpace(exp.Title) == "" && strings.TrimSpace(exp.Company) == "" {
				continue
			}
			end := exp.EndDate
			if exp.Current {
				end = "Present"
			}
			b.WriteString(fmt.Sprintf("\\textbf{%s} \\hfill %s--%s\\\\\n",
				escapeLatex(exp.Title), escapeLatex(exp.StartDate), escapeLatex(end)))
			b.WriteString(fmt.Sprintf("\\textit{%s} \\hfill %s\\\\\n",
				escapeLatex(exp.Company), escapeLatex(exp.Location)))
			if strings.TrimSpace(exp.Description) != "" {
				b.WriteString(escapeLatex(exp.Description))
				b.WriteString("\\\\[4pt]\n")
			}
		}
		b.WriteString("\n")
	}

	if len(data.Projects) > 0 {
		b.WriteString("\\section*{Projects}\n")
		for _, p := range data.Projects {
			if strings.TrimSpace(p.Title) == "" {
				continue
			}
			b.WriteString(fmt.Sprintf("\\textbf{%s}", escapeLatex(p.Title)))
			if p.Technologies != "" {
				b.WriteString(fmt.Sprintf(" \\hfill %s", escapeLatex(p.Technologies)))
			}
			b.WriteString("\\\\\n")
			if strings.TrimSpace(p.Description) != "" {
				b.WriteString(escapeLatex(p.Description))
				b.WriteString("\\\\[4pt]\n")
			}
		}
		b.WriteString("\n")
	}

	if len(data.Education) > 0 {
		b.WriteString("\\section*{Education}\n")
		for _, edu := range data.Education {
			if strings.TrimSpace(edu.Degree) == "" && strings.TrimSpace(edu.University) == "" {
				continue
			}
			b.WriteString(fmt.Sprintf("\\textbf{%s} \\hfill %s\\\\\n",
				escapeLatex(edu.Degree), escapeLatex(edu.GraduationDate)))
			b.WriteString(fmt.Sprintf("\\textit{%s} \\hfill %s\\\\[4pt]\n",
				escapeLatex(edu.University), escapeLatex(edu.Location)))
		}
		b.WriteString("\n")
	}

	writeStringList(&b, "Certifications", data.Certifications)
	writeStringList(&b, "Languages", data.Languages)

	b.WriteString("\\end{document}\n")
	return b.String(), nil
}

func renderCoverLetterTex(raw json.RawMessage) (string, error) {
	var data coverLetterData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to parse cover letter data: %w", err)
	}

	var b strings.Builder
	b.WriteString("\\documentclass[11pt,a4paper]{letter}\n")
	b.WriteString("\\usepackage[margin=2.5cm]{geometry}\n")

	pi := data.PersonalInfo
	name := strings.TrimSpace(pi.FirstName + " " + pi.LastName)
	b.WriteString(fmt.Sprintf("\\signature{%s}\n", escapeLatex(name)))

	fromLines := make([]string, 0, 3)
	for _, line := range []string{name, pi.Email, pi.Phone} {
		if line != "" {
			fromLines = append(fromLines, escapeLatex(line))
		}
	}
	b.WriteString(fmt.Sprintf("\\address{%s}\n", strings.Join(fromLines, "\\\\")))
	b.WriteString("\\begin{document}\n")

	recipient := make([]string, 0, 2)
	if data.RecipientName != "" {
		recipient = append(recipient, escapeLatex(data.RecipientName))
	}
	if data.CompanyName != "" {
		recipient = append(recipient, escapeLatex(data.CompanyName))
	}
	b.WriteString(fmt.Sprintf("\\begin{letter}{%s}\n", strings.Join(recipient, "\\\\")))

	if data.Salutation != "" {
		b.WriteString(fmt.Sprintf("\\opening{%s}\n\n", escapeLatex(data.Salutation)))
	} else {
		b.WriteString("\\opening{Dear Hiring Manager,}\n\n")
	}

	for _, paragraph := range data.BodyParagraphs {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		b.WriteString(escapeLatex(paragraph))
		b.WriteString("\n\n")
	}

	closing := data.Closing
	if closing == "" {
		closing = "Sincerely,"
	}
	b.WriteString(fmt.Sprintf("\\closing{%s}\n", escapeLatex(closing)))
	b.WriteString("\\end{letter}\n\\end{document}\n")

	return b.String(), nil
}

func hasSkills(categories []skillCategory) bool {
	for _, cat := range categories {
		if strings.TrimSpace(cat.Name) != "" || strings.TrimSpace(cat.Skills) != "" {
			return true
		}
	}
	return false
}

func writeStringList(b *strings.Builder, title string, items []string) {
	nonEmpty := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			nonEmpty = append(nonEmpty, escapeLatex(item))
		}
	}
	if len(nonEmpty) == 0 {
		return
	}

	b.WriteString(fmt.Sprintf("\\section*{%s}\n\\begin{itemize}[leftmargin=*,nosep]\n", title))
	for _, item := range nonEmpty {
		b.WriteString(fmt.Sprintf("\\item %s\n", item))
	}
	b.WriteString("\\end{itemize}\n\n")
}
