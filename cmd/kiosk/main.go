package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"PunchPass/internal/kiosk"
	"PunchPass/pkg/logger"
)

// 打卡终端的命令行外壳。没有摄像头的环境下用图片路径模拟扫码，
// 状态机和 API 通道与真实终端完全一致。
func main() {
	logger.Init()
	defer logger.Sync()

	endpoint := flag.String("endpoint", "http://localhost:8888/api/log-attendance", "attendance API endpoint")
	stateDir := flag.String("state-dir", defaultStateDir(), "directory for persisted kiosk state")
	flag.Parse()

	durable, err := kiosk.NewFileStore(*stateDir)
	if err != nil {
		logger.Logger.Fatal("Failed to open state directory", zap.Error(err))
	}

	ctrl := kiosk.NewController(
		kiosk.NewAPIClient(*endpoint),
		durable,
		kiosk.NewMemoryStore(), // 会话存储，进程退出即失效
		nil,                    // 命令行环境拿不到定位
	)
	ctrl.Start()

	if user := ctrl.User(); user != nil {
		fmt.Printf("Welcome back, %s (%s)\n", user.FullName, user.EmployeeID)
	}

	fmt.Println("Commands: scan <qr-text> | image <path> | register <name>;<mobile>;<department> | status | quit")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "scan":
			ctrl.HandleScan(ctx, arg)

		case "image":
			f, err := os.Open(arg)
			if err != nil {
				fmt.Printf("cannot open %s: %v\n", arg, err)
				continue
			}
			code, err := kiosk.DecodeQRFile(f)
			f.Close()
			if err != nil {
				fmt.Println(err)
				continue
			}
			ctrl.HandleScan(ctx, code)

		case "register":
			parts := strings.SplitN(arg, ";", 3)
			if len(parts) != 3 {
				fmt.Println("usage: register <name>;<mobile>;<department>")
				continue
			}
			ctrl.SubmitRegistration(ctx, kiosk.RegistrationForm{
				FullName:   strings.TrimSpace(parts[0]),
				Mobile:     strings.TrimSpace(parts[1]),
				Department: strings.TrimSpace(parts[2]),
			})

		case "status":
			// 只展示本地状态机，不发请求

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command")
			continue
		}

		state, message := ctrl.State()
		if message != "" {
			fmt.Printf("[%s] %s\n", state, message)
		} else {
			fmt.Printf("[%s]\n", state)
		}
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".punchpass-kiosk"
	}
	return home + "/.punchpass-kiosk"
}
