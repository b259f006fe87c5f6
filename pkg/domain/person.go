package domain

// Role discriminates the two kinds of people the library tracks.
type Role string

const (
	RoleEmployee Role = "employee"
	RolePatron   Role = "patron"
)

// Shift is an employee work schedule.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
	ShiftMixed   Shift = "mixed"
)

const (
	defaultEmail = "user@example.com"
	defaultPhone = "0000000000"
)

// Person carries the identity and contact fields shared by employees and
// patrons. IDs are externally assigned and never change.
type Person struct {
	name  string
	id    string
	email string
	phone string
}

func newPerson(name, id string) Person {
	return Person{name: name, id: id, email: defaultEmail, phone: defaultPhone}
}

func (p *Person) Name() string  { return p.name }
func (p *Person) ID() string    { return p.id }
func (p *Person) Email() string { return p.email }
func (p *Person) Phone() string { return p.phone }

func (p *Person) SetEmail(email string) { p.email = email }
func (p *Person) SetPhone(phone string) { p.phone = phone }
