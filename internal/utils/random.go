package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var commonSurnames = []string{
	"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Phan", "Vũ", "Võ", "Đặng",
	"Bùi", "Đỗ", "Hồ", "Ngô", "Dương", "Lý",
}
var commonMiddleNames = []string{
	"Văn", "Thị", "Minh", "Ngọc", "Thanh", "Hữu", "Đức", "Quốc", "Thu", "Gia",
}
var commonGivenNames = []string{
	"An", "Bình", "Chi", "Dũng", "Giang", "Hà", "Hải", "Hạnh", "Hiếu", "Hoa",
	"Hùng", "Khánh", "Lan", "Linh", "Long", "Mai", "Nam", "Ngân", "Phúc", "Quân",
	"Sơn", "Tâm", "Thảo", "Trang", "Tú", "Tuấn", "Uyên", "Việt", "Vy", "Yến",
}

func GenerateRandomVietnameseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	middle := commonMiddleNames[rand.Intn(len(commonMiddleNames))]
	given := commonGivenNames[rand.Intn(len(commonGivenNames))]
	return surname + " " + middle + " " + given
}

// RemoveDiacritics 去掉越南语声调和附加符号，例如 "Nguyễn Đức" -> "Nguyen Duc"
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	// đ 不是组合字符，需要单独处理
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(result)
}

var digits = "0123456789"

// GenerateUsernameFromVietnameseName 使用名字加上姓和中间名的首字母，例如 "Nguyễn Văn An" -> "annv42"
func GenerateUsernameFromVietnameseName(fullName string) string {
	parts := strings.Fields(strings.ToLower(RemoveDiacritics(fullName)))
	if len(parts) == 0 {
		return ""
	}

	username := parts[len(parts)-1]
	for _, part := range parts[:len(parts)-1] {
		username += part[:1]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}
	return username
}

var staffTiers = []domain.Tier{
	domain.TierFullTime,
	domain.TierCasual,
	domain.TierCasual,
	domain.TierAssistantManager,
}

func GenerateRandomTier() domain.Tier {
	return staffTiers[rand.Intn(len(staffTiers))]
}

func GenerateRandomEmployee(password string, emailDomainName string) (*domain.Employee, error) {
	fullName := GenerateRandomVietnameseName()
	username := GenerateUsernameFromVietnameseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleStaff,
		Tier:         GenerateRandomTier(),
	}

	return employee, nil
}

// 门店营业时间 07:00 - 22:00，以 30 分钟为粒度
const (
	openingMinutes = 7 * 60
	closingMinutes = 22 * 60
	slotMinutes    = 30
)

// GenerateRandomShiftPreference 约 1/6 的概率为请假，否则生成 3~8 小时的时间段
func GenerateRandomShiftPreference(employeeID int64, date domain.Date) *domain.ShiftPreference {
	p := &domain.ShiftPreference{
		EmployeeID: employeeID,
		Date:       date,
		Status:     domain.PreferenceStatusPending,
	}

	if rand.Intn(6) == 0 {
		p.IsOff = true
		return p
	}

	length := (rand.Intn(11) + 6) * slotMinutes
	latestStart := closingMinutes - length
	start := openingMinutes + rand.Intn((latestStart-openingMinutes)/slotMinutes+1)*slotMinutes

	startTime, endTime := domain.FormatClock(start), domain.FormatClock(start+length)
	p.StartTime, p.EndTime = &startTime, &endTime
	return p
}

// GenerateRandomRevenueEstimate 生成 6,000,000 ~ 15,000,000 之间、以 100,000 为单位的营收预估
func GenerateRandomRevenueEstimate(date domain.Date) *domain.RevenueEstimate {
	amount := int64(60+rand.Intn(91)) * 100000
	return &domain.RevenueEstimate{
		Date:   date,
		Amount: amount,
		Notes:  fmt.Sprintf("dự kiến %s", date.Weekday()),
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
