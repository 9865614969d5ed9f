package main

import (
	"fmt"
	"path/filepath"

	"cybershield/internal/importer"
	"cybershield/internal/models"
	"cybershield/internal/workbook"

	"github.com/spf13/cobra"
)

var personHeaders = map[models.Role][]interface{}{
	models.RoleOrganizer:   {"ФИО", "Почта", "Дата рождения", "Страна", "Телефон", "Пароль", "Фото", "Пол"},
	models.RoleParticipant: {"ФИО", "Почта", "Дата рождения", "Страна", "Телефон", "Пароль", "Фото", "Пол"},
	models.RoleModerator:   {"ФИО", "Пол", "Почта", "Дата рождения", "Страна", "Телефон", "Направление", "Мероприятие", "Пароль", "Фото"},
	models.RoleJury:        {"ФИО", "Пол", "Почта", "Дата рождения", "Страна", "Телефон", "Направление", "Пароль", "Фото"},
}

// templates returns every workbook name with its header row.
func templates(files importer.Files) map[string][]interface{} {
	t := map[string][]interface{}{
		files.Countries:  {"Страна", "Столица", "Код"},
		files.Cities:     {"№", "Регион", "Город"},
		files.Events:     {"№", "Мероприятие", "Дата начала", "Дней", "Город"},
		files.Activities: {"№", "Мероприятие", "Дата", "Дней", "Активность", "День", "Время", "Модератор", "Жюри 1", "Жюри 2", "Жюри 3", "Жюри 4", "Жюри 5", "Победитель"},
	}
	for _, role := range models.Roles {
		t[files.People(role)] = personHeaders[role]
	}
	return t
}

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write empty workbooks with the expected header rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			for name, header := range templates(importer.DefaultFiles()) {
				path := filepath.Join(out, name)
				if err := workbook.WriteFile(path, [][]interface{}{header}); err != nil {
					return withCode(exitSource, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "./import", "Target directory")
	return cmd
}
