package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// RepositoryFlag is the persistent flag naming the working folder.
const RepositoryFlag = "repo"

func repositoryFrom(cmd *cobra.Command) entities.Repository {
	folder, _ := cmd.Flags().GetString(RepositoryFlag)
	if folder == "" {
		folder = "."
	}
	return entities.NewRepository(folder)
}
