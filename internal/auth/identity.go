package auth

import "crypto/subtle"

// Role — уровень привилегий вызывающего.
// Порядок старшинства: ADMIN > TEMPLATE_OWNER > TEMPLATE_TEAM > GUEST.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "TEMPLATE_OWNER"
	RoleTeam  Role = "TEMPLATE_TEAM"
	RoleGuest Role = "_GUEST"
)

// AdminUserName — зарезервированное имя для входа администратора.
// Команду с таким именем создать нельзя.
const AdminUserName = "admin"

// AdminSecretDisabled — сентинел в конфиге, полностью выключающий админ-вход.
const AdminSecretDisabled = "disabled"

// Identity описывает вызывающего в рамках одного запроса.
// Чистое значение: никакой БД и никакого глобального состояния.
type Identity struct {
	userID    int64
	userName  string
	role      Role
	template  string
	anonymous bool
}

// Guest — идентичность без каких-либо привилегий.
func Guest() Identity {
	return Identity{role: RoleGuest, anonymous: true}
}

// NewIdentity — идентичность залогиненного пользователя шаблона.
func NewIdentity(userID int64, userName string, role Role, template string) Identity {
	return Identity{userID: userID, userName: userName, role: role, template: template}
}

// Admin — идентичность администратора. Администратор не хранится как User
// и не привязан к шаблону; template здесь — то, что он указал при входе.
func Admin(template string) Identity {
	return Identity{userName: AdminUserName, role: RoleAdmin, template: template}
}

func (i Identity) IsAnonymous() bool { return i.anonymous }
func (i Identity) Role() Role        { return i.role }
func (i Identity) Template() string  { return i.template }
func (i Identity) UserID() int64     { return i.userID }
func (i Identity) UserName() string  { return i.userName }

// VerifyAdminSecret сравнивает предъявленный пароль с общим админ-секретом.
// Пустой секрет или сентинел "disabled" означают, что админ-вход выключен
// и любой пароль отклоняется.
func VerifyAdminSecret(secret, presented string) bool {
	if secret == "" || secret == AdminSecretDisabled {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1
}
