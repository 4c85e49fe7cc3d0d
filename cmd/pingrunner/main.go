package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// 加载.env中的难度覆盖等环境变量，文件不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("加载.env失败: %v", err)
	}

	// 创建CLI应用
	app := createCliApp()

	// 运行应用
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
