package db

import "time"

// About 保存“关于我”区块，读取方总是使用最近更新的一条。
type About struct {
	Base
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (About) TableName() string {
	return "about"
}

// Project 作品集项目，Technologies 保持录入顺序。
type Project struct {
	Base
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	ImageURL     string     `json:"imageUrl"`
	DemoURL      string     `json:"demoUrl"`
	GithubURL    string     `json:"githubUrl"`
	Technologies StringList `json:"technologies"`
}

func (Project) TableName() string {
	return "projects"
}

// Experience 工作经历。Current 为 true 时 EndDate 不具业务含义，但原值保留。
type Experience struct {
	Base
	Title       string     `gorm:"not null" json:"title"`
	Company     string     `gorm:"not null" json:"company"`
	Location    string     `json:"location"`
	StartDate   time.Time  `gorm:"not null;index" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Current     bool       `gorm:"not null;default:false" json:"current"`
	Description string     `gorm:"type:text" json:"description"`
}

func (Experience) TableName() string {
	return "experiences"
}

// Education 教育经历，语义与 Experience 相同。
type Education struct {
	Base
	Institution string     `gorm:"not null" json:"institution"`
	Degree      string     `gorm:"not null" json:"degree"`
	Field       string     `json:"field"`
	StartDate   time.Time  `gorm:"not null;index" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Current     bool       `gorm:"not null;default:false" json:"current"`
	Description string     `gorm:"type:text" json:"description"`
}

func (Education) TableName() string {
	return "education"
}

// Skill 技能条目，Level 取值 1-10。
type Skill struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Level    int    `gorm:"not null;default:1" json:"level"`
	Category string `gorm:"not null;index" json:"category"`
}

func (Skill) TableName() string {
	return "skills"
}

type Certification struct {
	Base
	Name          string     `gorm:"not null" json:"name"`
	Issuer        string     `gorm:"not null" json:"issuer"`
	IssueDate     time.Time  `gorm:"not null" json:"issueDate"`
	ExpiryDate    *time.Time `json:"expiryDate"`
	CredentialID  *string    `json:"credentialId"`
	CredentialURL *string    `json:"credentialUrl"`
}

func (Certification) TableName() string {
	return "certifications"
}

type Award struct {
	Base
	Title       string    `gorm:"not null" json:"title"`
	Issuer      string    `gorm:"not null" json:"issuer"`
	Date        time.Time `gorm:"not null" json:"date"`
	Description *string   `gorm:"type:text" json:"description"`
}

func (Award) TableName() string {
	return "awards"
}
