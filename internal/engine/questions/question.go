package questions

// AnonymousUsername is the display name shown in place of the author of an
// anonymous question.
const AnonymousUsername = "Anonymous"

type Question struct {
	ID              string
	Seq             int64
	UserID          string
	OrganizationID  string
	Content         string
	IsAnonymous     bool
	Date            int64
	LastMessageTime int64
}

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// View is the read-side shape of a question. The author is replaced by a
// placeholder when the question is anonymous.
type View struct {
	ID              string `json:"id"`
	User            Author `json:"user"`
	Organization    string `json:"organization"`
	Content         string `json:"content"`
	IsAnonymous     bool   `json:"isAnonymous"`
	Date            int64  `json:"date"`
	LastMessageTime int64  `json:"lastMessageTime"`
}

// Project applies the anonymization rule. username is the author's display name.
func Project(q *Question, username string) *View {
	author := Author{ID: q.UserID, Username: username}
	if q.IsAnonymous {
		author = Author{ID: "", Username: AnonymousUsername}
	}

	return &View{
		ID:              q.ID,
		User:            author,
		Organization:    q.OrganizationID,
		Content:         q.Content,
		IsAnonymous:     q.IsAnonymous,
		Date:            q.Date,
		LastMessageTime: q.LastMessageTime,
	}
}
