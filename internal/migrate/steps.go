package migrate

import (
	"context"

	"github.com/contactus/backend/internal/settings"
)

const createTableSQL = "CREATE TABLE `contact_message` (" +
	"`id` INT AUTO_INCREMENT NOT NULL," +
	"`owner_id` INT DEFAULT NULL," +
	"`resource_id` INT DEFAULT NULL," +
	"`site_id` INT DEFAULT NULL," +
	"`email` VARCHAR(190) NOT NULL," +
	"`name` VARCHAR(190) DEFAULT NULL," +
	"`subject` LONGTEXT DEFAULT NULL," +
	"`body` LONGTEXT NOT NULL," +
	"`fields` LONGTEXT DEFAULT NULL COMMENT '(DC2Type:json_array)'," +
	"`source` LONGTEXT DEFAULT NULL," +
	"`media_type` VARCHAR(190) DEFAULT NULL," +
	"`storage_id` VARCHAR(190) DEFAULT NULL," +
	"`extension` VARCHAR(190) DEFAULT NULL," +
	"`request_url` VARCHAR(1024) DEFAULT NULL COLLATE `latin1_bin`," +
	"`ip` VARCHAR(45) NOT NULL," +
	"`user_agent` VARCHAR(1024) DEFAULT NULL," +
	"`newsletter` TINYINT(1) DEFAULT NULL," +
	"`is_read` TINYINT(1) DEFAULT '0' NOT NULL," +
	"`is_spam` TINYINT(1) DEFAULT '0' NOT NULL," +
	"`to_author` TINYINT(1) DEFAULT '0' NOT NULL," +
	"`created` DATETIME NOT NULL," +
	"`modified` DATETIME DEFAULT NULL," +
	"UNIQUE INDEX UNIQ_2C9211FE5CC5DB90 (`storage_id`)," +
	"INDEX IDX_2C9211FE7E3C61F9 (`owner_id`)," +
	"INDEX IDX_2C9211FE89329D25 (`resource_id`)," +
	"INDEX IDX_2C9211FEF6BD1646 (`site_id`)," +
	"PRIMARY KEY(`id`)" +
	") DEFAULT CHARACTER SET utf8mb4 COLLATE `utf8mb4_unicode_ci` ENGINE = InnoDB"

// Install creates the final schema and writes the default settings. Used
// on fresh databases; upgrades from older releases go through Steps.
func Install(ctx context.Context, env *Env) error {
	stmts := []string{
		createTableSQL,
		"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FE7E3C61F9 FOREIGN KEY (`owner_id`) REFERENCES `user` (`id`) ON DELETE SET NULL",
		"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FE89329D25 FOREIGN KEY (`resource_id`) REFERENCES `resource` (`id`) ON DELETE SET NULL",
		"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FEF6BD1646 FOREIGN KEY (`site_id`) REFERENCES `site` (`id`) ON DELETE SET NULL",
	}
	for _, sql := range stmts {
		if err := env.DB.WithContext(ctx).Exec(sql).Error; err != nil {
			return err
		}
	}
	return settings.SaveGlobal(ctx, env.Settings, settings.DefaultGlobal())
}

// Uninstall drops everything the module owns: table, settings and
// per-site settings. Attachment files are the file store's to remove.
func Uninstall(ctx context.Context, env *Env) error {
	if err := env.DB.WithContext(ctx).Exec("DROP TABLE IF EXISTS `contact_message`").Error; err != nil {
		return err
	}
	keys := []string{
		settings.KeyVersion,
		settings.KeyNotifyRecipients,
		settings.KeyAuthor,
		settings.KeyAuthorOnly,
		settings.KeySendWithUserEmail,
		settings.KeyCreateZip,
		settings.KeyDeleteZip,
	}
	for _, key := range keys {
		if err := env.Settings.Delete(ctx, key); err != nil {
			return err
		}
	}
	siteKeys := []string{
		settings.KeyNotifyRecipients,
		settings.KeyNotifySubject,
		settings.KeyNotifyBody,
		settings.KeyConfirmationEnabled,
		settings.KeyConfirmationSubject,
		settings.KeyConfirmationBody,
		settings.KeyConfirmationNewsletterSubject,
		settings.KeyConfirmationNewsletterBody,
		settings.KeyToAuthorSubject,
		settings.KeyToAuthorBody,
		settings.KeyAntispam,
		settings.KeyQuestions,
		settings.KeyConsentLabel,
		settings.KeyAppendResourceShow,
		settings.KeyAppendItemsBrowse,
	}
	return eachSite(ctx, env, func(siteID uint64) error {
		for _, key := range siteKeys {
			if err := env.SiteSettings.Delete(ctx, siteID, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Steps is the ordered upgrade history. Versions must be strictly
// ascending; the runner applies each step at most once.
func Steps() []Step {
	return []Step{
		{
			Version: "3.3.8",
			Label:   "drop obsolete html setting",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.Settings.Delete(ctx, "contactus_html"); err != nil {
					return err
				}
				return eachSite(ctx, env, func(siteID uint64) error {
					return env.SiteSettings.Delete(ctx, siteID, "contactus_html")
				})
			},
		},
		{
			Version: "3.3.8.1",
			Label:   "create contact_message table",
			Legacy:  true,
			Run: func(ctx context.Context, env *Env) error {
				// Early schema; later steps rework columns and the
				// owner constraint. Most installations already have it.
				stmts := []string{
					"CREATE TABLE `contact_message` (" +
						"`id` INT AUTO_INCREMENT NOT NULL," +
						"`owner_id` INT DEFAULT NULL," +
						"`resource_id` INT DEFAULT NULL," +
						"`site_id` INT DEFAULT NULL," +
						"`email` VARCHAR(190) NOT NULL," +
						"`name` VARCHAR(190) DEFAULT NULL," +
						"`subject` LONGTEXT DEFAULT NULL," +
						"`body` LONGTEXT NOT NULL," +
						"`source` LONGTEXT DEFAULT NULL," +
						"`media_type` VARCHAR(190) DEFAULT NULL," +
						"`storage_id` VARCHAR(190) DEFAULT NULL," +
						"`extension` VARCHAR(255) DEFAULT NULL," +
						"`request_url` VARCHAR(1024) DEFAULT NULL," +
						"`ip` VARCHAR(45) NOT NULL," +
						"`user_agent` TEXT DEFAULT NULL," +
						"`is_read` TINYINT(1) DEFAULT 0 NOT NULL," +
						"`is_spam` TINYINT(1) DEFAULT 0 NOT NULL," +
						"`newsletter` TINYINT(1) DEFAULT NULL," +
						"`created` DATETIME NOT NULL," +
						"UNIQUE INDEX UNIQ_2C9211FE5CC5DB90 (`storage_id`)," +
						"INDEX IDX_2C9211FE7E3C61F9 (`owner_id`)," +
						"INDEX IDX_2C9211FE89329D25 (`resource_id`)," +
						"INDEX IDX_2C9211FEF6BD1646 (`site_id`)," +
						"PRIMARY KEY(`id`)" +
						") DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci ENGINE = InnoDB",
					"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FE7E3C61F9 FOREIGN KEY (`owner_id`) REFERENCES `user` (`id`) ON DELETE CASCADE",
					"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FE89329D25 FOREIGN KEY (`resource_id`) REFERENCES `resource` (`id`) ON DELETE SET NULL",
					"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FEF6BD1646 FOREIGN KEY (`site_id`) REFERENCES `site` (`id`) ON DELETE SET NULL",
				}
				for _, sql := range stmts {
					if err := env.DB.WithContext(ctx).Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version: "3.3.8.4",
			Label:   "rename notify subject setting",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.Settings.Delete(ctx, "contactus_html"); err != nil {
					return err
				}
				return eachSite(ctx, env, func(siteID uint64) error {
					if err := env.SiteSettings.Set(ctx, siteID, settings.KeyNotifyBody, settings.DefaultSite().NotifyBody); err != nil {
						return err
					}
					var old string
					if _, err := env.SiteSettings.Get(ctx, siteID, "contactus_subject", &old); err != nil {
						return err
					}
					if err := env.SiteSettings.Set(ctx, siteID, settings.KeyNotifySubject, old); err != nil {
						return err
					}
					return env.SiteSettings.Delete(ctx, siteID, "contactus_subject")
				})
			},
		},
		{
			Version: "3.3.8.5",
			Label:   "add consent label",
			Run: func(ctx context.Context, env *Env) error {
				env.Notices.Add("A checkbox for consent has been added to the user form. You may update the default label in site settings")
				return eachSite(ctx, env, func(siteID uint64) error {
					for _, key := range []string{"contactus_newsletter", "contactus_newsletter_label", "contactus_attach_file"} {
						if err := env.SiteSettings.Delete(ctx, siteID, key); err != nil {
							return err
						}
					}
					return env.SiteSettings.Set(ctx, siteID, settings.KeyConsentLabel, settings.DefaultSite().ConsentLabel)
				})
			},
		},
		{
			Version: "3.3.8.7",
			Label:   "owner reference set-null on delete",
			Run: func(ctx context.Context, env *Env) error {
				stmts := []string{
					"ALTER TABLE `contact_message` DROP FOREIGN KEY FK_2C9211FE7E3C61F9",
					"ALTER TABLE `contact_message` " +
						"CHANGE `owner_id` `owner_id` INT DEFAULT NULL," +
						"CHANGE `resource_id` `resource_id` INT DEFAULT NULL," +
						"CHANGE `site_id` `site_id` INT DEFAULT NULL," +
						"CHANGE `name` `name` VARCHAR(190) DEFAULT NULL," +
						"CHANGE `media_type` `media_type` VARCHAR(190) DEFAULT NULL," +
						"CHANGE `storage_id` `storage_id` VARCHAR(190) DEFAULT NULL," +
						"CHANGE `extension` `extension` VARCHAR(190) DEFAULT NULL," +
						"CHANGE `request_url` `request_url` VARCHAR(1024) DEFAULT NULL COLLATE `latin1_bin`," +
						"CHANGE `user_agent` `user_agent` VARCHAR(1024) DEFAULT NULL," +
						"CHANGE `newsletter` `newsletter` TINYINT(1) DEFAULT NULL",
					"ALTER TABLE `contact_message` ADD CONSTRAINT FK_2C9211FE7E3C61F9 FOREIGN KEY (`owner_id`) REFERENCES `user` (`id`) ON DELETE SET NULL",
				}
				for _, sql := range stmts {
					if err := env.DB.WithContext(ctx).Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version: "3.3.8.8",
			Label:   "add to_author flag",
			Run: func(ctx context.Context, env *Env) error {
				sql := "ALTER TABLE `contact_message` " +
					"ADD `to_author` TINYINT(1) DEFAULT '0' NOT NULL AFTER `is_spam`," +
					"CHANGE `owner_id` `owner_id` INT DEFAULT NULL," +
					"CHANGE `resource_id` `resource_id` INT DEFAULT NULL," +
					"CHANGE `site_id` `site_id` INT DEFAULT NULL," +
					"CHANGE `name` `name` VARCHAR(190) DEFAULT NULL," +
					"CHANGE `media_type` `media_type` VARCHAR(190) DEFAULT NULL," +
					"CHANGE `storage_id` `storage_id` VARCHAR(190) DEFAULT NULL," +
					"CHANGE `extension` `extension` VARCHAR(190) DEFAULT NULL," +
					"CHANGE `request_url` `request_url` VARCHAR(1024) DEFAULT NULL COLLATE `latin1_bin`," +
					"CHANGE `user_agent` `user_agent` VARCHAR(1024) DEFAULT NULL," +
					"CHANGE `newsletter` `newsletter` TINYINT(1) DEFAULT NULL"
				if err := env.DB.WithContext(ctx).Exec(sql).Error; err != nil {
					return err
				}
				defaults := settings.DefaultSite()
				if err := eachSite(ctx, env, func(siteID uint64) error {
					if err := env.SiteSettings.Set(ctx, siteID, settings.KeyToAuthorSubject, defaults.ToAuthorSubject); err != nil {
						return err
					}
					return env.SiteSettings.Set(ctx, siteID, settings.KeyToAuthorBody, defaults.ToAuthorBody)
				}); err != nil {
					return err
				}
				env.Notices.Add("It’s now possible to set a specific message when contacting author.")
				env.Notices.Add("It’s now possible to contact authors of a resource directly.")
				return nil
			},
		},
		{
			Version: "3.3.8.11",
			Label:   "backfill resource id from request url",
			Run: func(ctx context.Context, env *Env) error {
				// Takes the trailing numeric path segment as the
				// resource id. Known approximation: a URL whose last
				// segment is numeric but unrelated will be matched too.
				sql := "UPDATE `contact_message` " +
					"SET `resource_id` = SUBSTRING_INDEX(`request_url`, '/', -1) " +
					"WHERE `resource_id` IS NULL " +
					"AND `request_url` IS NOT NULL " +
					"AND SUBSTRING_INDEX(`request_url`, '/', -1) REGEXP '^[0-9]+$'"
				return env.DB.WithContext(ctx).Exec(sql).Error
			},
		},
		{
			Version: "3.4.8.13",
			Label:   "add fields column",
			Run: func(ctx context.Context, env *Env) error {
				sql := "ALTER TABLE `contact_message` " +
					"ADD `fields` LONGTEXT DEFAULT NULL COMMENT '(DC2Type:json_array)' AFTER `body`"
				if err := env.DB.WithContext(ctx).Exec(sql).Error; err != nil {
					return err
				}
				env.Notices.Add("It’s now possible to append specific fields to the form.")
				return nil
			},
		},
		{
			Version: "3.4.10",
			Label:   "browse form advisory",
			Run: func(ctx context.Context, env *Env) error {
				env.Notices.Add("It’s now possible to add a contact form to the items browse page and to send a list of resource ids.")
				return nil
			},
		},
		{
			Version: "3.4.11",
			Label:   "add modified column, zip settings",
			Run: func(ctx context.Context, env *Env) error {
				sql := "ALTER TABLE `contact_message` ADD `modified` DATETIME DEFAULT NULL AFTER `created`"
				if err := env.DB.WithContext(ctx).Exec(sql).Error; err != nil {
					return err
				}
				// Old messages predate the modified column; treat their
				// flags as changed at creation.
				backfill := "UPDATE `contact_message` SET `modified` = `created` " +
					"WHERE `is_read` IS NOT NULL OR `is_spam` IS NOT NULL"
				if err := env.DB.WithContext(ctx).Exec(backfill).Error; err != nil {
					return err
				}
				var oldZip string
				if _, err := env.Settings.Get(ctx, "contactus_zip", &oldZip); err != nil {
					return err
				}
				if err := env.Settings.Set(ctx, settings.KeyCreateZip, oldZip); err != nil {
					return err
				}
				if err := env.Settings.Delete(ctx, "contactus_zip"); err != nil {
					return err
				}
				if err := env.Settings.Set(ctx, settings.KeyDeleteZip, 30); err != nil {
					return err
				}
				env.Notices.Add("It’s now possible to prepare a zip file of asked files to send to a visitor via a link.")
				return nil
			},
		},
		{
			Version: "3.4.13",
			Label:   "default zip mode",
			Run: func(ctx context.Context, env *Env) error {
				var mode string
				if _, err := env.Settings.Get(ctx, settings.KeyCreateZip, &mode); err != nil {
					return err
				}
				if mode == "" {
					mode = "original"
				}
				if err := env.Settings.Set(ctx, settings.KeyCreateZip, mode); err != nil {
					return err
				}
				env.Notices.Add("A new button allows to create a zip for any contact.")
				return nil
			},
		},
		{
			Version: "3.4.14",
			Label:   "append-to-page toggles",
			Run: func(ctx context.Context, env *Env) error {
				defaults := settings.DefaultSite()
				if err := eachSite(ctx, env, func(siteID uint64) error {
					if err := env.SiteSettings.Set(ctx, siteID, settings.KeyAppendResourceShow, defaults.AppendResourceShow); err != nil {
						return err
					}
					return env.SiteSettings.Set(ctx, siteID, settings.KeyAppendItemsBrowse, defaults.AppendItemsBrowse)
				}); err != nil {
					return err
				}
				env.Notices.Add("Two new options allow to append the contact form to resource pages. They are disabled by default, so check them if you need them.")
				env.Notices.Add("A new option allows to use the user email to send message. It is not recommended because many emails providers reject them as spam. Use it only if you manage your own domain.")
				return nil
			},
		},
		{
			Version: "3.4.15",
			Label:   "newsletter confirmation templates",
			Run: func(ctx context.Context, env *Env) error {
				defaults := settings.DefaultSite()
				if err := eachSite(ctx, env, func(siteID uint64) error {
					if err := env.SiteSettings.Set(ctx, siteID, settings.KeyConfirmationNewsletterSubject, defaults.ConfirmationNewsletterSubject); err != nil {
						return err
					}
					return env.SiteSettings.Set(ctx, siteID, settings.KeyConfirmationNewsletterBody, defaults.ConfirmationNewsletterBody)
				}); err != nil {
					return err
				}
				env.Notices.Add("A new block allows to display a form to subscribe to a newsletter.")
				return nil
			},
		},
	}
}

func eachSite(ctx context.Context, env *Env, fn func(siteID uint64) error) error {
	ids, err := env.SiteSettings.SiteIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}
