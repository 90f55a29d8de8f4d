package utils

import (
	"fmt"
	"math/rand"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateHandleFromChineseName 用姓名的拼音前缀加上几位数字生成联系地址的用户名部分
func GenerateHandleFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	handle := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		handle += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		handle += string(digits[rand.Intn(len(digits))])
	}

	return handle
}

func GenerateRandomPhone() string {
	phone := "555"
	for i := 0; i < 7; i++ {
		phone += string(digits[rand.Intn(len(digits))])
	}
	return phone
}

var languages = []string{"", "en", "es", "zh"}

// GenerateRandomEmployee 生成随机员工，大约十分之一没有联系地址，用来演示 missing_contact
func GenerateRandomEmployee(gatewayDomain string) *domain.Employee {
	fullName := GenerateRandomChineseName()
	employee := &domain.Employee{
		FullName: fullName,
		Phone:    GenerateRandomPhone(),
		Language: languages[rand.Intn(len(languages))],
	}

	if rand.Intn(10) != 0 {
		employee.ContactAddress = GenerateHandleFromChineseName(fullName) + "@" + gatewayDomain
	}

	return employee
}

var streets = []string{"Pier Rd", "Mill St", "Harbor Ave", "Oak Ln", "Station Blvd", "Quarry Way"}
var projects = []string{"Lofts", "Clinic", "Warehouse", "School", "Tower", "Depot"}

// GenerateRandomJob 生成随机工地，大约十分之一没有地址，用来演示 missing_location
func GenerateRandomJob() *domain.Job {
	street := streets[rand.Intn(len(streets))]
	job := &domain.Job{
		Name: fmt.Sprintf("%s %s %s", street, projects[rand.Intn(len(projects))], GenerateRandomID(2, 2)),
	}

	if rand.Intn(10) != 0 {
		job.Address = fmt.Sprintf("%d %s", rand.Intn(900)+100, street)
	}

	return job
}

var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var tasks = []string{"Framing", "Drywall", "Painting", "Roofing", "Site cleanup", "Electrical rough-in", "Concrete pour"}

// GenerateRandomSchedule 把员工随机分到若干工地，同一工地的行相邻，返回按工地排好的有效行
func GenerateRandomSchedule(employees []*domain.Employee, jobs []*domain.Job) []domain.AssignmentRow {
	if len(jobs) == 0 {
		return nil
	}

	shuffled := append([]*domain.Employee{}, employees...) // 复制数组，避免修改原数组
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	byJob := make([][]*domain.Employee, len(jobs))
	for _, e := range shuffled {
		j := rand.Intn(len(jobs))
		byJob[j] = append(byJob[j], e)
	}

	rows := make([]domain.AssignmentRow, 0, len(employees))
	for j, crew := range byJob {
		task := tasks[rand.Intn(len(tasks))]
		for _, e := range crew {
			rows = append(rows, domain.AssignmentRow{
				ID:             GenerateRandomID(4, 4),
				EmployeeID:     &e.ID,
				EmployeeName:   e.FullName,
				JobID:          &jobs[j].ID,
				JobName:        jobs[j].Name,
				JobAddress:     jobs[j].Address,
				CostCode:       fmt.Sprintf("CC-%03d", jobs[j].ID),
				ScheduledTasks: task,
			})
		}
	}

	return rows
}
