package models

import (
	"fmt"
	"strings"
)

// User is a member identity as returned by the backend.
// Some endpoints nest the identity one level down under "member"; see
// session.Normalize for the canonical flat shape.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	ProfileImgURL string `json:"profileImgUrl,omitempty"`
	Level         *int   `json:"level,omitempty"`
	Experience    *int   `json:"exp,omitempty"`
	Member        *User  `json:"member,omitempty"`
}

// IsAdmin reports whether the member has the admin role
func (u *User) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, "ADMIN")
}

// Envelope is the body shape of every backend response
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// LoginResult is the data of a successful login response.
// AccessToken is only present when the backend issues a bearer token.
type LoginResult struct {
	User
	AccessToken string `json:"accessToken,omitempty"`
}

// News represents a news article
type News struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	Description       string `json:"description,omitempty"`
	Link              string `json:"link,omitempty"`
	ImgURL            string `json:"imgUrl,omitempty"`
	OriginCreatedDate string `json:"originCreatedDate,omitempty"`
	MediaName         string `json:"mediaName,omitempty"`
	Journalist        string `json:"journalist,omitempty"`
	OriginalNewsURL   string `json:"originalNewsUrl,omitempty"`
	NewsCategory      string `json:"newsCategory,omitempty"`
	SelectedDate      string `json:"selectedDate,omitempty"`
}

// QuizOption is one of the three answer slots of a daily quiz
type QuizOption string

const (
	Option1 QuizOption = "OPTION1"
	Option2 QuizOption = "OPTION2"
	Option3 QuizOption = "OPTION3"
)

// ParseQuizOption accepts the wire value or the A/B/C and 1/2/3 labels shown to users
func ParseQuizOption(s string) (QuizOption, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPTION1", "A", "1":
		return Option1, nil
	case "OPTION2", "B", "2":
		return Option2, nil
	case "OPTION3", "C", "3":
		return Option3, nil
	}
	return "", fmt.Errorf("invalid quiz option '%s', must be one of: A, B, C", s)
}

// Label returns the letter shown next to the option
func (o QuizOption) Label() string {
	switch o {
	case Option1:
		return "A"
	case Option2:
		return "B"
	case Option3:
		return "C"
	default:
		return ""
	}
}

// DailyQuiz is a multiple-choice question generated from today's news
type DailyQuiz struct {
	ID            int64      `json:"id"`
	Question      string     `json:"question"`
	Option1       string     `json:"option1"`
	Option2       string     `json:"option2"`
	Option3       string     `json:"option3"`
	CorrectOption QuizOption `json:"correctOption"`
}

// OptionText returns the text of the given option
func (q *DailyQuiz) OptionText(o QuizOption) string {
	switch o {
	case Option1:
		return q.Option1
	case Option2:
		return q.Option2
	case Option3:
		return q.Option3
	default:
		return ""
	}
}

// DailyQuizWithHistory pairs a quiz with the member's previous answer, if any
type DailyQuizWithHistory struct {
	Quiz     DailyQuiz   `json:"dailyQuizDto"`
	Answer   *QuizOption `json:"answer"`
	Correct  bool        `json:"correct"`
	GainExp  int         `json:"gainExp"`
	QuizType string      `json:"quizType"`
}

// Solved reports whether the member has already answered the quiz
func (q *DailyQuizWithHistory) Solved() bool {
	return q.Answer != nil
}

// DailyQuizAnswer is the grading result of a submitted answer
type DailyQuizAnswer struct {
	QuizID         int64      `json:"quizId"`
	Question       string     `json:"question"`
	CorrectOption  QuizOption `json:"correctOption"`
	SelectedOption QuizOption `json:"selectedOption"`
	IsCorrect      bool       `json:"isCorrect"`
	GainExp        int        `json:"gainExp"`
	QuizType       string     `json:"quizType"`
}

// DetailQuiz is a multiple-choice question about one specific article.
// Older backends omit the id; see DetailQuizID.
type DetailQuiz struct {
	ID            int64      `json:"id,omitempty"`
	Question      string     `json:"question"`
	Option1       string     `json:"option1"`
	Option2       string     `json:"option2"`
	Option3       string     `json:"option3"`
	CorrectOption QuizOption `json:"correctOption"`
}

// OptionText returns the text of the given option
func (q *DetailQuiz) OptionText(o QuizOption) string {
	switch o {
	case Option1:
		return q.Option1
	case Option2:
		return q.Option2
	case Option3:
		return q.Option3
	default:
		return ""
	}
}

// DetailQuizID returns the id the history endpoint expects for the quiz at
// position idx of an article's quiz list. Without an id from the backend it
// is derived as newsID*100 + idx + 1.
func DetailQuizID(newsID int64, idx int, q *DetailQuiz) int64 {
	if q.ID != 0 {
		return q.ID
	}
	return newsID*100 + int64(idx) + 1
}

// QuizTypeDetail marks a history entry as an answer to an article quiz
const QuizTypeDetail = "DETAIL"

// HistoryRequest is one answer recorded in the member's quiz history
type HistoryRequest struct {
	QuizID   int64      `json:"quizId" validate:"required,gt=0"`
	QuizType string     `json:"quizType" validate:"required,oneof=DETAIL DAILY FACT"`
	Answer   QuizOption `json:"answer" validate:"required,oneof=OPTION1 OPTION2 OPTION3"`
}

// NewsCategory is the backend's news category enumeration
type NewsCategory string

const (
	CategoryPolitics NewsCategory = "POLITICS"
	CategoryEconomy  NewsCategory = "ECONOMY"
	CategorySociety  NewsCategory = "SOCIETY"
	CategoryCulture  NewsCategory = "CULTURE"
	CategoryIT       NewsCategory = "IT"
)

// ParseNewsCategory validates a category name (case-insensitive)
func ParseNewsCategory(s string) (NewsCategory, error) {
	c := NewsCategory(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CategoryPolitics, CategoryEconomy, CategorySociety, CategoryCulture, CategoryIT:
		return c, nil
	}
	return "", fmt.Errorf("invalid category '%s', must be one of: politics, economy, society, culture, it", s)
}

// FactQuiz is an OX quiz asking whether a headline is real or fake
type FactQuiz struct {
	ID            int64  `json:"id"`
	Question      string `json:"question"`
	RealNewsTitle string `json:"realNewsTitle"`
	NewsCategory  string `json:"newsCategory,omitempty"`
}
